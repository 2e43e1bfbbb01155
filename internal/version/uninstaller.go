package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/pkg/models"
)

// ErrToolchainInUse 表示待删除的工具链仍被项目 SDK 引用。
var ErrToolchainInUse = errors.New("uninstaller: toolchain is referenced by project sdks")

// ReferenceChecker 查询引用某个安装目录的 SDK。
type ReferenceChecker interface {
	SdksUsingHome(ctx context.Context, home string) ([]string, error)
}

// Uninstaller 删除本地已安装的工具链。
type Uninstaller struct {
	storage storage.LocalStorage
	refs    ReferenceChecker
	logger  *slog.Logger
}

// NewUninstaller 创建卸载器，refs 可以为 nil。
func NewUninstaller(store storage.LocalStorage, refs ReferenceChecker, logger *slog.Logger) *Uninstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uninstaller{storage: store, refs: refs, logger: logger}
}

// Uninstall 删除指定版本并返回剩余版本。仍被 SDK 引用时需要 force。
func (u *Uninstaller) Uninstall(ctx context.Context, version string, force bool) ([]models.Version, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, errors.New("uninstaller: version is required")
	}
	if u.storage == nil {
		return nil, errors.New("uninstaller: storage is required")
	}

	versions, err := u.storage.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("uninstaller: load metadata: %w", err)
	}

	var target *models.Version
	for i := range versions {
		if versions[i].Number == version {
			target = &versions[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("uninstaller: version %s not installed", version)
	}

	if u.refs != nil && target.InstallPath != "" {
		users, err := u.refs.SdksUsingHome(ctx, target.InstallPath)
		if err != nil {
			return nil, fmt.Errorf("uninstaller: check references: %w", err)
		}
		if len(users) > 0 {
			if !force {
				return nil, fmt.Errorf("%w: %s used by %s", ErrToolchainInUse, version, strings.Join(users, ", "))
			}
			u.logger.Warn("toolchain_removed_while_referenced", "version", version, "sdks", users)
		}
	}

	if target.InstallPath != "" {
		if err := os.RemoveAll(target.InstallPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("uninstaller: remove dir: %w", err)
		}
	}
	if err := u.storage.DeleteMetadata(target.Number); err != nil {
		return nil, fmt.Errorf("uninstaller: delete metadata: %w", err)
	}
	u.logger.Info("toolchain_removed", "version", version, "path", target.InstallPath)

	remaining, err := u.storage.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("uninstaller: reload metadata: %w", err)
	}
	return remaining, nil
}
