package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/liangyou/gosdk/pkg/models"
)

func TestDownloaderDownloadSuccess(t *testing.T) {
	t.Parallel()

	payload := []byte("hello gosdk")
	sum := sha256.Sum256(payload)
	checksum := hex.EncodeToString(sum[:])

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	cfg := models.Config{RootDir: t.TempDir()}
	downloadsDir := filepath.Join(cfg.RootDir, "cache")
	var lastProgress int64
	dl := NewDownloader(
		cfg,
		WithHTTPClient(server.Client()),
		WithDownloadsDir(downloadsDir),
		WithProgressFunc(func(done, total int64) {
			atomic.StoreInt64(&lastProgress, done)
		}),
	)

	version := models.Version{
		DownloadURL: server.URL,
		FileName:    "go1.21.0.linux-amd64.tar.gz",
		Checksum:    checksum,
	}

	path, err := dl.Download(context.Background(), version)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if path != filepath.Join(downloadsDir, version.FileName) {
		t.Fatalf("unexpected path: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
	if got := atomic.LoadInt64(&lastProgress); got != int64(len(payload)) {
		t.Fatalf("unexpected progress: %d", got)
	}
}

func TestDownloaderChecksumMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bad sum"))
	}))
	defer server.Close()

	cfg := models.Config{RootDir: t.TempDir()}
	dl := NewDownloader(cfg, WithHTTPClient(server.Client()))

	version := models.Version{
		DownloadURL: server.URL,
		FileName:    "go1.20.linux-amd64.tar.gz",
		Checksum:    "0000",
	}

	if _, err := dl.Download(context.Background(), version); err == nil {
		t.Fatal("expected checksum mismatch error")
	}

	finalPath := filepath.Join(cfg.RootDir, "downloads", version.FileName)
	if _, err := os.Stat(finalPath); !os.IsNotExist(err) {
		t.Fatalf("expected no file at %s", finalPath)
	}
}

func TestDownloaderHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dl := NewDownloader(models.Config{RootDir: t.TempDir()}, WithHTTPClient(server.Client()))
	version := models.Version{DownloadURL: server.URL, FileName: "go.tgz", Checksum: "abcd"}

	if _, err := dl.Download(context.Background(), version); err == nil {
		t.Fatal("expected http error")
	}
}

func TestDownloaderRequiresChecksum(t *testing.T) {
	t.Parallel()

	dl := NewDownloader(models.Config{RootDir: t.TempDir()})
	if _, err := dl.Download(context.Background(), models.Version{DownloadURL: "http://127.0.0.1:1/x"}); err == nil {
		t.Fatal("expected error for empty checksum")
	}
}
