package sdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/pkg/models"
)

var (
	// ErrNoFix 表示没有可用的修复动作。
	ErrNoFix = errors.New("sdk: no fix available")
	// ErrDownloadInProgress 表示该 SDK 已有下载在进行。
	ErrDownloadInProgress = errors.New("sdk: download already in progress")
)

// FixKind 区分修复动作的来源。
type FixKind string

const (
	FixLocal    FixKind = "local"
	FixDownload FixKind = "download"
)

// LocalFix 建议把 SDK 指向本机已有的安装。
type LocalFix struct {
	HomePath      string
	VersionString string
}

// DownloadableFix 建议下载并安装一个发布版本。
type DownloadableFix struct {
	Release models.Version
}

// FixAction 是可以应用到项目的具体修复。
type FixAction interface {
	Kind() FixKind
	Description() string
	Apply(ctx context.Context) error
}

// Fix 汇总项目、失效 SDK 以及至多一个修复动作。
type Fix struct {
	Project *project.Project
	Sdk     *InvalidSdk
	Action  FixAction
}

// HasAction 报告是否存在修复动作。
func (f *Fix) HasAction() bool {
	return f.Action != nil
}

// Apply 执行修复动作，没有动作时返回 ErrNoFix。
func (f *Fix) Apply(ctx context.Context) error {
	if f.Action == nil {
		return fmt.Errorf("%w for %s", ErrNoFix, f.Sdk.SdkName())
	}
	return f.Action.Apply(ctx)
}

// BuildFix 根据建议构造修复：本地建议优先于下载建议，两者都没有时返回不含动作的 Fix。
func (i *InvalidSdk) BuildFix(t *Tracker, local *LocalFix, download *DownloadableFix) *Fix {
	var action FixAction
	if local != nil {
		action = &LocalFixAction{sdk: i, tracker: t, fix: *local}
	} else if download != nil {
		action = &DownloadFixAction{sdk: i, tracker: t, fix: *download}
	}
	return &Fix{Project: t.Project(), Sdk: i, Action: action}
}

// LocalFixAction 把 SDK 指向本机已有的安装。
type LocalFixAction struct {
	sdk     *InvalidSdk
	tracker *Tracker
	fix     LocalFix
}

func (a *LocalFixAction) Kind() FixKind { return FixLocal }

// Suggestion 返回本地建议。
func (a *LocalFixAction) Suggestion() LocalFix { return a.fix }

func (a *LocalFixAction) Description() string {
	return fmt.Sprintf("use %s at %s", a.fix.VersionString, a.fix.HomePath)
}

func (a *LocalFixAction) Apply(ctx context.Context) error {
	return a.sdk.CopySdk(ctx, a.tracker, a.fix.VersionString, a.fix.HomePath)
}

// DownloadFixAction 下载安装一个发布版本后把 SDK 指向它。
type DownloadFixAction struct {
	sdk     *InvalidSdk
	tracker *Tracker
	fix     DownloadableFix
}

func (a *DownloadFixAction) Kind() FixKind { return FixDownload }

// Suggestion 返回下载建议。
func (a *DownloadFixAction) Suggestion() DownloadableFix { return a.fix }

func (a *DownloadFixAction) Description() string {
	return fmt.Sprintf("download and install %s", a.fix.Release.DisplayName())
}

func (a *DownloadFixAction) Apply(ctx context.Context) error {
	if a.tracker.installer == nil {
		return errors.New("sdk: download fix requires an installer")
	}

	home, err := a.install(ctx)
	if err != nil {
		return err
	}
	return a.sdk.CopySdk(ctx, a.tracker, a.fix.Release.DisplayName(), home)
}

func (a *DownloadFixAction) install(ctx context.Context) (string, error) {
	name := a.sdk.SdkName()
	finish, ok := a.tracker.downloads.Start(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDownloadInProgress, name)
	}
	defer finish()

	a.tracker.logger.Info("sdk_download_started", "sdk", name, "release", a.fix.Release.DisplayName())
	home, err := a.tracker.installer.Install(ctx, a.fix.Release)
	if err != nil {
		return "", fmt.Errorf("sdk: install %s: %w", a.fix.Release.DisplayName(), err)
	}
	return home, nil
}
