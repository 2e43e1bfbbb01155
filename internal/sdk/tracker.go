package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/pkg/models"
)

// Installer 安装指定的工具链版本并返回安装目录。
type Installer interface {
	Install(ctx context.Context, version models.Version) (string, error)
}

// Report 是一次重新扫描的结果。
type Report struct {
	CheckedAt time.Time
	Total     int
	Invalid   []*InvalidSdk
}

// Tracker 将项目与校验、安装、下载状态绑定在一起，作为显式传递的项目上下文。
type Tracker struct {
	project   *project.Project
	resolver  *Resolver
	installer Installer
	downloads *DownloadTracker
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last *Report
}

// TrackerOption 配置 Tracker。
type TrackerOption func(*Tracker)

// WithInstaller 指定下载修复使用的安装器。
func WithInstaller(installer Installer) TrackerOption {
	return func(t *Tracker) {
		t.installer = installer
	}
}

// WithDownloadTracker 指定下载状态记录，应与 Resolver 使用同一个实例。
func WithDownloadTracker(d *DownloadTracker) TrackerOption {
	return func(t *Tracker) {
		if d != nil {
			t.downloads = d
		}
	}
}

// WithTrackerLogger 指定日志记录器。
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker 创建 Tracker。未指定下载状态时复用 resolver 的实例。
func NewTracker(p *project.Project, resolver *Resolver, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		project:  p,
		resolver: resolver,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.downloads == nil {
		if shared, ok := resolver.downloads.(*DownloadTracker); ok {
			t.downloads = shared
		} else {
			t.downloads = NewDownloadTracker()
		}
	}
	return t
}

// Project 返回被跟踪的项目。
func (t *Tracker) Project() *project.Project { return t.project }

// Downloads 返回下载状态记录。
func (t *Tracker) Downloads() *DownloadTracker { return t.downloads }

// UpdateUnknownSdksNow 立即重新扫描项目中的全部 SDK。
func (t *Tracker) UpdateUnknownSdksNow(ctx context.Context) (*Report, error) {
	sdks, err := t.project.SDKs(ctx)
	if err != nil {
		return nil, fmt.Errorf("sdk: read project: %w", err)
	}
	invalid, err := t.resolver.ResolveInvalidSdks(ctx, sdks)
	if err != nil {
		return nil, err
	}

	report := &Report{CheckedAt: t.now().UTC(), Total: len(sdks), Invalid: invalid}
	t.mu.Lock()
	t.last = report
	t.mu.Unlock()

	t.logger.Info("sdk_rescan_complete", "project", t.project.Path(), "total", report.Total, "invalid", len(invalid))
	return report, nil
}

// LastReport 返回最近一次扫描结果，尚未扫描时为 nil。
func (t *Tracker) LastReport() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Fixes 为最近一次扫描中的每个失效 SDK 计算建议并构造修复。
func (t *Tracker) Fixes(ctx context.Context, suggester *Suggester) ([]*Fix, error) {
	report := t.LastReport()
	if report == nil {
		var err error
		if report, err = t.UpdateUnknownSdksNow(ctx); err != nil {
			return nil, err
		}
	}

	fixes := make([]*Fix, 0, len(report.Invalid))
	for _, inv := range report.Invalid {
		local, download, err := suggester.Suggest(ctx, inv)
		if err != nil {
			return nil, err
		}
		fixes = append(fixes, inv.BuildFix(t, local, download))
	}
	return fixes, nil
}

// CopySdk 在一次写事务中更新 SDK 的版本与安装目录并重新推导路径，随后立即重新扫描项目。
func (i *InvalidSdk) CopySdk(ctx context.Context, t *Tracker, version, home string) error {
	name := i.sdk.Name
	err := t.project.WriteAction(ctx, func(tok *project.WriteToken) error {
		mod, err := tok.Modificator(name)
		if err != nil {
			return err
		}
		mod.SetVersionString(version)
		mod.SetHomePath(home)
		if err := mod.Commit(); err != nil {
			return err
		}

		if err := i.typ.SetupPaths(ctx, mod); err != nil {
			return err
		}
		return mod.Commit()
	})
	if err != nil {
		return fmt.Errorf("sdk: update %s: %w", name, err)
	}
	t.logger.Info("sdk_updated", "sdk", name, "version", version, "home", home)

	_, err = t.UpdateUnknownSdksNow(ctx)
	return err
}
