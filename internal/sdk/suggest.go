package sdk

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/liangyou/gosdk/internal/remote"
	"github.com/liangyou/gosdk/pkg/models"
)

// InstalledSource 列出本机已安装的工具链。
type InstalledSource interface {
	LoadMetadata() ([]models.Version, error)
}

// Suggester 为失效 SDK 寻找本地与下载两类修复建议。
type Suggester struct {
	installed InstalledSource
	releases  remote.ReleaseSource
	logger    *slog.Logger
}

// NewSuggester 创建 Suggester，任一来源可以为 nil。
func NewSuggester(installed InstalledSource, releases remote.ReleaseSource, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{installed: installed, releases: releases, logger: logger}
}

// Suggest 并发查询两类来源。优先精确匹配期望版本，否则选同一版本线上最新的正式版；
// 未登记版本时选最新的正式版。来源失败只记录告警，取消信号会返回。
func (s *Suggester) Suggest(ctx context.Context, inv *InvalidSdk) (*LocalFix, *DownloadableFix, error) {
	var (
		local    *LocalFix
		download *DownloadableFix
	)
	expected := inv.ExpectedVersionString()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fix, err := s.suggestLocal(gctx, inv, expected)
		if err != nil {
			if isCancellation(err) {
				return err
			}
			s.logger.Warn("sdk_local_suggestion_failed", "sdk", inv.SdkName(), "error", err)
			return nil
		}
		local = fix
		return nil
	})
	g.Go(func() error {
		fix, err := s.suggestDownload(gctx, expected)
		if err != nil {
			if isCancellation(err) {
				return err
			}
			s.logger.Warn("sdk_download_suggestion_failed", "sdk", inv.SdkName(), "error", err)
			return nil
		}
		download = fix
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return local, download, nil
}

func (s *Suggester) suggestLocal(ctx context.Context, inv *InvalidSdk, expected string) (*LocalFix, error) {
	if s.installed == nil {
		return nil, nil
	}
	installed, err := s.installed.LoadMetadata()
	if err != nil {
		return nil, err
	}

	var candidates []models.Version
	for _, v := range installed {
		if v.InstallPath == "" {
			continue
		}
		ok, err := inv.SdkType().IsValidHome(ctx, v.InstallPath)
		if err != nil {
			if isCancellation(err) {
				return nil, err
			}
			continue
		}
		if ok {
			candidates = append(candidates, v)
		}
	}

	best, ok := pickVersion(candidates, expected)
	if !ok {
		return nil, nil
	}
	return &LocalFix{HomePath: best.InstallPath, VersionString: best.DisplayName()}, nil
}

func (s *Suggester) suggestDownload(ctx context.Context, expected string) (*DownloadableFix, error) {
	if s.releases == nil {
		return nil, nil
	}
	releases, err := s.releases.FetchVersions(ctx)
	if err != nil {
		return nil, err
	}
	best, ok := pickVersion(releases, expected)
	if !ok {
		return nil, nil
	}
	return &DownloadableFix{Release: best}, nil
}

// pickVersion 在 versions 中选出与 expected 最匹配的版本。
func pickVersion(versions []models.Version, expected string) (models.Version, bool) {
	if len(versions) == 0 {
		return models.Version{}, false
	}
	sorted := append([]models.Version(nil), versions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return remote.CompareVersions(sorted[i].Number, sorted[j].Number) > 0
	})

	want := remote.Normalize(expected)
	if want != "" {
		for _, v := range sorted {
			if v.Number == want {
				return v, true
			}
		}
	}

	line := remote.Line(want)
	for _, v := range sorted {
		if !remote.IsStable(v.Number) {
			continue
		}
		if want == "" || remote.Line(v.Number) == line {
			return v, true
		}
	}
	return models.Version{}, false
}
