package version

import (
	"context"
	"fmt"
	"sort"

	"github.com/liangyou/gosdk/internal/remote"
	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/pkg/models"
)

// Lister 聚合远程与本地工具链信息。
type Lister struct {
	remote  remote.ReleaseSource
	storage storage.LocalStorage
}

// NewLister 创建版本列表服务。
func NewLister(releases remote.ReleaseSource, store storage.LocalStorage) *Lister {
	return &Lister{remote: releases, storage: store}
}

// RemoteVersions 返回远程可下载的版本。
func (l *Lister) RemoteVersions(ctx context.Context) ([]models.Version, error) {
	if l.remote == nil {
		return nil, fmt.Errorf("lister: remote client is required")
	}
	return l.remote.FetchVersions(ctx)
}

// LocalVersions 返回本地已安装版本，按版本号从新到旧排序。
func (l *Lister) LocalVersions() ([]models.Version, error) {
	if l.storage == nil {
		return nil, fmt.Errorf("lister: storage is required")
	}
	versions, err := l.storage.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("lister: load metadata: %w", err)
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return remote.CompareVersions(versions[i].Number, versions[j].Number) > 0
	})
	return versions, nil
}

// LoadMetadata 让 Lister 可以作为本地工具链来源使用。
func (l *Lister) LoadMetadata() ([]models.Version, error) {
	return l.LocalVersions()
}

// FormatRemoteVersion 格式化远程版本输出，包含版本号与架构信息。
func FormatRemoteVersion(v models.Version) string {
	return fmt.Sprintf("%s (%s/%s)", v.DisplayName(), v.OS, v.Arch)
}

// FormatLocalVersion 格式化本地版本输出，users 为引用该工具链的 SDK。
func FormatLocalVersion(v models.Version, users []string) string {
	pathInfo := v.InstallPath
	if pathInfo == "" {
		pathInfo = "(unknown path)"
	}
	marker := " "
	if len(users) > 0 {
		marker = "*"
	}
	line := fmt.Sprintf("%s %s - %s", marker, v.DisplayName(), pathInfo)
	if len(users) > 0 {
		line += fmt.Sprintf(" %v", users)
	}
	return line
}
