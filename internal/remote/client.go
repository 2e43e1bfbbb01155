package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/liangyou/gosdk/pkg/models"
)

const (
	DefaultAPIBase      = "https://go.dev/dl/?mode=json&include=all"
	DefaultDownloadBase = "https://go.dev/dl/"
	defaultCacheTTL     = 5 * time.Minute
)

// ReleaseSource 定义远程版本源应具备的能力。
type ReleaseSource interface {
	FetchVersions(ctx context.Context) ([]models.Version, error)
}

// HTTPClient 描述最小化的 HTTP 客户端接口，方便测试时替换。
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option 用于配置 Client。
type Option func(*Client)

// WithBaseURL 设置发布索引地址。
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithDownloadBase 设置下载地址前缀，用于镜像源。
func WithDownloadBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			if !strings.HasSuffix(base, "/") {
				base += "/"
			}
			c.downloadBase = base
		}
	}
}

// WithHTTPClient 设置 HTTP 客户端。
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithCacheTTL 设置远程缓存时间。
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithPlatform 只保留指定平台的归档。
func WithPlatform(goos, goarch string) Option {
	return func(c *Client) {
		if goos != "" {
			c.goos = goos
		}
		if goarch != "" {
			c.goarch = goarch
		}
	}
}

// WithLogger 指定日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client 从 Go 发布索引获取可下载的工具链。
type Client struct {
	baseURL      string
	downloadBase string
	httpClient   HTTPClient
	cacheTTL     time.Duration
	goos         string
	goarch       string
	logger       *slog.Logger

	mu       sync.Mutex
	cached   []models.Version
	cachedAt time.Time
}

// NewClient 创建远程版本源客户端，默认只保留当前平台的归档。
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultAPIBase,
		downloadBase: DefaultDownloadBase,
		httpClient:   http.DefaultClient,
		cacheTTL:     defaultCacheTTL,
		goos:         runtime.GOOS,
		goarch:       runtime.GOARCH,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchVersions 获取远程可用版本，按版本从新到旧排序。
func (c *Client) FetchVersions(ctx context.Context) ([]models.Version, error) {
	if versions, ok := c.getCached(); ok {
		return versions, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read body: %w", err)
	}

	versions, err := c.parseVersions(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("remote_index_fetched", "url", c.baseURL, "versions", len(versions))
	c.setCache(versions)
	return versions, nil
}

func (c *Client) parseVersions(data []byte) ([]models.Version, error) {
	var releases []release
	if err := json.Unmarshal(data, &releases); err != nil {
		return nil, fmt.Errorf("remote: decode response: %w", err)
	}

	var versions []models.Version
	for _, rel := range releases {
		for _, file := range rel.Files {
			if file.OS != c.goos || file.Arch != c.goarch || file.Kind != "archive" {
				continue
			}
			if !strings.HasSuffix(file.Filename, ".tar.gz") {
				continue
			}
			versions = append(versions, models.Version{
				Number:      Normalize(rel.Version),
				FullName:    rel.Version,
				DownloadURL: c.downloadBase + file.Filename,
				FileName:    file.Filename,
				Checksum:    file.Checksum,
				OS:          file.OS,
				Arch:        file.Arch,
			})
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i].FullName, versions[j].FullName) > 0
	})
	return versions, nil
}

func (c *Client) getCached() ([]models.Version, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cached) == 0 {
		return nil, false
	}
	if c.cacheTTL > 0 && time.Since(c.cachedAt) > c.cacheTTL {
		c.cached = nil
		return nil, false
	}
	clone := make([]models.Version, len(c.cached))
	copy(clone, c.cached)
	return clone, true
}

func (c *Client) setCache(versions []models.Version) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cached = make([]models.Version, len(versions))
	copy(c.cached, versions)
	c.cachedAt = time.Now()
}

// release 表示 Go 官方 API 中的版本记录。
type release struct {
	Version string        `json:"version"`
	Stable  bool          `json:"stable"`
	Files   []releaseFile `json:"files"`
}

// releaseFile 表示 release 下的文件条目。
type releaseFile struct {
	Filename string `json:"filename"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Checksum string `json:"sha256"`
	Kind     string `json:"kind"`
}
