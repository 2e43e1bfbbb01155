package version

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/pkg/models"
)

// ArtifactDownloader 用于获取远程 Go 发行版的压缩包。
type ArtifactDownloader interface {
	Download(ctx context.Context, version models.Version) (string, error)
}

// Installer 负责将下载好的工具链安装到 versions 目录。
type Installer struct {
	storage    storage.LocalStorage
	downloader ArtifactDownloader
	logger     *slog.Logger
	now        func() time.Time
}

// InstallerOption 配置 Installer。
type InstallerOption func(*Installer)

// WithInstallerLogger 指定日志记录器。
func WithInstallerLogger(logger *slog.Logger) InstallerOption {
	return func(i *Installer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInstaller 创建 Installer。
func NewInstaller(store storage.LocalStorage, downloader ArtifactDownloader, opts ...InstallerOption) *Installer {
	i := &Installer{
		storage:    store,
		downloader: downloader,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install 下载并解压指定版本，返回安装目录。已安装的版本直接返回其路径。
func (i *Installer) Install(ctx context.Context, version models.Version) (string, error) {
	if i.storage == nil || i.downloader == nil {
		return "", errors.New("installer: missing dependencies")
	}

	if existing, err := i.installedPath(version.Number); err != nil {
		return "", err
	} else if existing != "" {
		i.logger.Debug("toolchain_already_installed", "version", version.Number, "path", existing)
		return existing, nil
	}

	installPath := i.storage.GetInstallPath(version.Number)
	if err := os.MkdirAll(filepath.Dir(installPath), 0o755); err != nil {
		return "", fmt.Errorf("installer: prepare parent dir: %w", err)
	}

	archivePath, err := i.downloader.Download(ctx, version)
	if err != nil {
		return "", err
	}

	tempDir, err := os.MkdirTemp(filepath.Dir(installPath), "install-*")
	if err != nil {
		return "", fmt.Errorf("installer: create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	destDir := filepath.Join(tempDir, "root")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("installer: prepare extract dir: %w", err)
	}

	if err := extractTarGz(ctx, archivePath, destDir); err != nil {
		return "", err
	}

	if err := os.RemoveAll(installPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("installer: cleanup previous install: %w", err)
	}
	if err := os.Rename(destDir, installPath); err != nil {
		return "", fmt.Errorf("installer: move install directory: %w", err)
	}

	version.InstallPath = installPath
	version.InstalledAt = i.now().UTC()
	if err := i.storage.SaveMetadata(version); err != nil {
		return "", fmt.Errorf("installer: save metadata: %w", err)
	}

	i.logger.Info("toolchain_installed", "version", version.Number, "path", installPath)
	return installPath, nil
}

func (i *Installer) installedPath(number string) (string, error) {
	versions, err := i.storage.LoadMetadata()
	if err != nil {
		return "", fmt.Errorf("installer: load metadata: %w", err)
	}
	for _, v := range versions {
		if v.Number != number || v.InstallPath == "" {
			continue
		}
		if info, err := os.Stat(v.InstallPath); err == nil && info.IsDir() {
			return v.InstallPath, nil
		}
	}
	return "", nil
}

func extractTarGz(ctx context.Context, archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("installer: open archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("installer: gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("installer: read archive: %w", err)
		}

		relPath, skip := normalizeTarPath(header.Name)
		if skip {
			continue
		}

		target := filepath.Join(dest, relPath)
		if err := ensureWithinRoot(dest, target); err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0o700); err != nil {
				return fmt.Errorf("installer: mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := extractFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("installer: mkdir for link %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("installer: symlink %s: %w", target, err)
			}
		default:
			return fmt.Errorf("installer: unsupported tar entry %q", header.Name)
		}
	}
	return nil
}

func extractFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("installer: mkdir for file %s: %w", target, err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("installer: create file %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("installer: copy file %s: %w", target, err)
	}
	return f.Close()
}

// normalizeTarPath 去掉官方压缩包中的 go/ 前缀，其它顶层条目忽略。
func normalizeTarPath(name string) (string, bool) {
	clean := strings.TrimPrefix(path.Clean(name), "./")
	rel, ok := strings.CutPrefix(clean, "go/")
	if !ok || rel == "" {
		return "", true
	}
	return rel, false
}

func ensureWithinRoot(root, target string) error {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	if target == root {
		return nil
	}
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return fmt.Errorf("installer: illegal path %s", target)
	}
	return nil
}
