package sdk

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/pkg/models"
)

// fakeType 按 home 返回预设的校验结果。
type fakeType struct {
	mu     sync.Mutex
	valid  map[string]bool
	errs   map[string]error
	panics map[string]bool
	calls  []string

	setupErr error
}

func (f *fakeType) ID() string { return "Fake" }

func (f *fakeType) IsValidHome(_ context.Context, home string) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, home)
	f.mu.Unlock()
	if f.panics[home] {
		panic("validator exploded")
	}
	if err := f.errs[home]; err != nil {
		return false, err
	}
	return f.valid[home], nil
}

func (f *fakeType) SetupPaths(_ context.Context, mod PathsModificator) error {
	if f.setupErr != nil {
		return f.setupErr
	}
	mod.SetRoots([]string{filepath.Join(mod.HomePath(), "src")})
	return nil
}

type stubDownloads map[string]bool

func (s stubDownloads) IsDownloading(sdk models.SDK) bool { return s[sdk.Name] }

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// makeGoHome 在 dir 下创建一个最小的 Go 安装目录。
func makeGoHome(t *testing.T, dir, version string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "runtime"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "go"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(version+"\ntime 2024-01-01\n"), 0o644))
	return dir
}

// newProject 创建含给定 SDK 的项目。
func newProject(t *testing.T, sdks ...models.SDK) *project.Project {
	t.Helper()
	p := project.New(filepath.Join(t.TempDir(), ".gosdk", "sdks.xml"))
	require.NoError(t, p.WriteAction(context.Background(), func(tok *project.WriteToken) error {
		for _, s := range sdks {
			if err := tok.Add(s); err != nil {
				return err
			}
		}
		return nil
	}))
	return p
}

type fakeInstaller struct {
	home      string
	version   string
	downloads *DownloadTracker
	sdkName   string
	sawActive bool
	installed []models.Version
	err       error
	t         *testing.T
}

func (f *fakeInstaller) Install(_ context.Context, v models.Version) (string, error) {
	if f.downloads != nil {
		f.sawActive = f.downloads.IsDownloading(models.SDK{Name: f.sdkName})
	}
	if f.err != nil {
		return "", f.err
	}
	f.installed = append(f.installed, v)
	return makeGoHome(f.t, f.home, f.version), nil
}

type fakeMetadata struct {
	versions []models.Version
	err      error
}

func (f fakeMetadata) LoadMetadata() ([]models.Version, error) { return f.versions, f.err }

type fakeReleases struct {
	versions []models.Version
	err      error
}

func (f fakeReleases) FetchVersions(context.Context) ([]models.Version, error) {
	return f.versions, f.err
}
