package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liangyou/gosdk/pkg/models"
)

// DownloadChecker 查询 SDK 是否正在下载。
type DownloadChecker interface {
	IsDownloading(sdk models.SDK) bool
}

// InvalidSdk 记录一次校验中发现的失效 SDK 及其类型。
type InvalidSdk struct {
	sdk models.SDK
	typ Type
}

// SDK 返回失效 SDK 的副本。
func (i *InvalidSdk) SDK() models.SDK { return i.sdk.Clone() }

// SdkType 返回 SDK 类型。
func (i *InvalidSdk) SdkType() Type { return i.typ }

// SdkName 返回 SDK 名称。
func (i *InvalidSdk) SdkName() string { return i.sdk.Name }

// ExpectedVersionString 返回项目中登记的版本字符串，可能为空。
func (i *InvalidSdk) ExpectedVersionString() string { return i.sdk.VersionString }

// Resolver 找出安装目录失效的 SDK。
type Resolver struct {
	types     *Registry
	downloads DownloadChecker
	testMode  bool
	logger    *slog.Logger
}

// ResolverOption 配置 Resolver。
type ResolverOption func(*Resolver)

// WithDownloads 指定下载状态查询。
func WithDownloads(d DownloadChecker) ResolverOption {
	return func(r *Resolver) {
		if d != nil {
			r.downloads = d
		}
	}
}

// WithTestMode 开启后跳过标记为 Stub 的 SDK。
func WithTestMode(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.testMode = enabled
	}
}

// WithResolverLogger 指定日志记录器。
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver 创建 Resolver。
func NewResolver(types *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		types:     types,
		downloads: NewDownloadTracker(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveInvalidSdks 返回 sdks 中安装目录无法通过类型校验的条目。
// 取消信号会立即返回；其它校验错误只记录告警，该 SDK 视为有效。
func (r *Resolver) ResolveInvalidSdks(ctx context.Context, sdks []models.SDK) ([]*InvalidSdk, error) {
	var result []*InvalidSdk
	for _, sdk := range sdks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.downloads.IsDownloading(sdk) {
			r.logger.Debug("sdk_validation_skipped", "sdk", sdk.Name, "reason", "downloading")
			continue
		}

		invalid, err := r.resolveInvalidSdk(ctx, sdk)
		if err != nil {
			return nil, err
		}
		if invalid != nil {
			result = append(result, invalid)
		}
	}
	return result, nil
}

func (r *Resolver) resolveInvalidSdk(ctx context.Context, sdk models.SDK) (*InvalidSdk, error) {
	typ, ok := r.types.Lookup(sdk.Type)
	if !ok {
		r.logger.Debug("sdk_validation_skipped", "sdk", sdk.Name, "reason", "unknown_type", "type", sdk.Type)
		return nil, nil
	}
	if r.testMode && sdk.Stub {
		return nil, nil
	}

	valid, err := r.validate(ctx, typ, sdk.HomePath)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		r.logger.Warn("sdk_validation_failed", "sdk", sdk.String(), "home", sdk.HomePath, "error", err)
		return nil, nil
	}
	if valid {
		return nil, nil
	}
	return &InvalidSdk{sdk: sdk.Clone(), typ: typ}, nil
}

func (r *Resolver) validate(ctx context.Context, typ Type, home string) (valid bool, err error) {
	if home == "" {
		return false, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sdk: validator %s panicked: %v", typ.ID(), rec)
		}
	}()
	return typ.IsValidHome(ctx, home)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
