package cli

import (
	"context"
	"log/slog"

	"github.com/liangyou/gosdk/internal/env"
	"github.com/liangyou/gosdk/internal/platform"
	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/internal/region"
	"github.com/liangyou/gosdk/internal/remote"
	"github.com/liangyou/gosdk/internal/sdk"
	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/internal/version"
	"github.com/liangyou/gosdk/pkg/models"
)

// BuildServices 按配置装配真实的存储、远程索引、安装器与项目。
func BuildServices(ctx context.Context, cfg models.Config, logger *slog.Logger) (*Services, error) {
	apiBase, downloadBase := cfg.APIBase, cfg.DownloadBase
	if cfg.Mirror != "" {
		mirror, err := region.Resolve(ctx, cfg.Mirror, region.NewDetector(region.WithDetectorLogger(logger)))
		if err != nil {
			if mirror.APIBase == "" {
				return nil, err
			}
			logger.Warn("mirror_detection_failed", "fallback", mirror.Name, "error", err)
		}
		logger.Debug("mirror_selected", "mirror", mirror.Name)
		apiBase, downloadBase = mirror.APIBase, mirror.DownloadBase
	}

	store := storage.NewFileStorage(cfg)
	releases := remote.NewClient(
		remote.WithBaseURL(apiBase),
		remote.WithDownloadBase(downloadBase),
		remote.WithCacheTTL(cfg.CacheTTL),
		remote.WithLogger(logger),
	)
	lister := version.NewLister(releases, store)

	proj, err := project.Open(cfg.ProjectFile, project.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	types := sdk.NewRegistry(sdk.GoType{})
	downloads := sdk.NewDownloadTracker()
	resolver := sdk.NewResolver(types, sdk.WithDownloads(downloads), sdk.WithResolverLogger(logger))
	trackerOpts := []sdk.TrackerOption{sdk.WithDownloadTracker(downloads), sdk.WithTrackerLogger(logger)}

	services := &Services{
		Toolchains:  lister,
		Uninstaller: version.NewUninstaller(store, proj, logger),
		Types:       types,
		Suggester:   sdk.NewSuggester(lister, releases, logger),
		Shell:       env.NewManager(),
	}

	// 不支持的平台仍可检查 SDK，只是不提供下载安装。
	if err := platform.NewChecker(cfg).Validate(); err != nil {
		logger.Warn("toolchain_downloads_disabled", "error", err)
	} else {
		installer := version.NewInstaller(store, version.NewDownloader(cfg), version.WithInstallerLogger(logger))
		services.Installer = installer
		trackerOpts = append(trackerOpts, sdk.WithInstaller(installer))
	}

	services.Tracker = sdk.NewTracker(proj, resolver, trackerOpts...)
	return services, nil
}
