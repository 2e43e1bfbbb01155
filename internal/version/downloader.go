package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/pkg/models"
)

// ProgressFunc 在下载过程中回调当前已完成的字节数以及总字节数。
type ProgressFunc func(downloaded, total int64)

// Downloader 负责下载工具链压缩包并进行校验。
type Downloader struct {
	httpClient   HTTPClient
	downloadsDir string
	progressFunc ProgressFunc
}

// HTTPClient 定义 Downloader 所需的 HTTP 客户端能力。
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DownloaderOption 配置 Downloader。
type DownloaderOption func(*Downloader)

// WithHTTPClient 指定自定义 HTTP 客户端。
func WithHTTPClient(client HTTPClient) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithDownloadsDir 指定下载目录。
func WithDownloadsDir(dir string) DownloaderOption {
	return func(d *Downloader) {
		if dir != "" {
			d.downloadsDir = dir
		}
	}
}

// WithProgressFunc 指定进度回调。
func WithProgressFunc(fn ProgressFunc) DownloaderOption {
	return func(d *Downloader) {
		d.progressFunc = fn
	}
}

// NewDownloader 创建 Downloader，默认下载到 <root>/downloads。
func NewDownloader(cfg models.Config, opts ...DownloaderOption) *Downloader {
	root := cfg.RootDir
	if root == "" {
		root = storage.DefaultRoot()
	}
	d := &Downloader{
		httpClient:   http.DefaultClient,
		downloadsDir: filepath.Join(root, "downloads"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download 获取指定版本的压缩包并校验 SHA256，返回本地文件路径。
func (d *Downloader) Download(ctx context.Context, version models.Version) (string, error) {
	if version.Checksum == "" {
		return "", fmt.Errorf("downloader: empty checksum for %s", version.DisplayName())
	}
	if err := os.MkdirAll(d.downloadsDir, 0o755); err != nil {
		return "", fmt.Errorf("downloader: create dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, version.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("downloader: build request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloader: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloader: unexpected status %d", resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(d.downloadsDir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("downloader: temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		tempFile.Close()
		os.Remove(tempPath)
	}()

	// 边写边算哈希，避免二次读取文件。
	hasher := sha256.New()
	reader := io.TeeReader(d.wrapProgress(resp.Body, resp.ContentLength), hasher)
	if _, err := io.Copy(tempFile, reader); err != nil {
		return "", fmt.Errorf("downloader: write file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return "", fmt.Errorf("downloader: sync file: %w", err)
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, version.Checksum) {
		return "", fmt.Errorf("downloader: checksum mismatch, got %s want %s", actual, version.Checksum)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("downloader: close file: %w", err)
	}

	name := version.FileName
	if name == "" {
		name = version.DisplayName() + ".tar.gz"
	}
	finalPath := filepath.Join(d.downloadsDir, filepath.Base(name))
	if err := os.Remove(finalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("downloader: remove existing: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("downloader: finalize file: %w", err)
	}
	return finalPath, nil
}

func (d *Downloader) wrapProgress(reader io.Reader, total int64) io.Reader {
	if d.progressFunc == nil {
		return reader
	}
	return &progressReader{r: reader, total: total, report: d.progressFunc}
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report(p.read, p.total)
	}
	return n, err
}
