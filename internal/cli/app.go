// Package cli 实现 gosdk 的 cobra 命令树。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liangyou/gosdk/internal/config"
	"github.com/liangyou/gosdk/internal/sdk"
	"github.com/liangyou/gosdk/pkg/models"
)

// ToolchainService 描述工具链查询能力。
type ToolchainService interface {
	RemoteVersions(ctx context.Context) ([]models.Version, error)
	LocalVersions() ([]models.Version, error)
}

// InstallService 描述安装能力。
type InstallService interface {
	Install(ctx context.Context, version models.Version) (string, error)
}

// UninstallService 描述卸载能力。
type UninstallService interface {
	Uninstall(ctx context.Context, version string, force bool) ([]models.Version, error)
}

// ShellService 生成并写入激活 SDK 的 shell 配置。
type ShellService interface {
	DetectShell() (string, error)
	Script(shell, goRoot string) (string, error)
	WriteShellConfig(shell, goRoot string) (string, error)
}

// Services 是命令执行所需的全部依赖。
type Services struct {
	Toolchains  ToolchainService
	Installer   InstallService
	Uninstaller UninstallService
	Types       *sdk.Registry
	Tracker     *sdk.Tracker
	Suggester   *sdk.Suggester
	Shell       ShellService
}

// Builder 根据加载好的配置构造 Services。
type Builder func(ctx context.Context, cfg models.Config, logger *slog.Logger) (*Services, error)

// App 持有命令树共享的状态。
type App struct {
	version    string
	build      Builder
	v          *viper.Viper
	configDirs []string

	cfg      models.Config
	logger   *slog.Logger
	services *Services
}

// Option 配置 App。
type Option func(*App)

// WithConfigDirs 指定 config.yaml 的查找目录。
func WithConfigDirs(dirs ...string) Option {
	return func(a *App) {
		a.configDirs = dirs
	}
}

// NewApp 创建 CLI 应用实例。
func NewApp(version string, build Builder, opts ...Option) *App {
	a := &App{
		version: version,
		build:   build,
		v:       viper.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute 运行命令树。
func (a *App) Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	cmd := a.RootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

// RootCmd 构造根命令。
func (a *App) RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gosdk",
		Short:         "Manage Go toolchains and the SDKs a project depends on",
		Long:          "gosdk installs Go toolchains, tracks the SDKs registered for a project, detects SDKs whose home no longer holds a valid installation and fixes them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(config.KeyRootDir, "", "gosdk root directory (default ~/.gosdk)")
	flags.String(config.KeyVersionsDir, "", "toolchain install directory (default <root-dir>/versions)")
	flags.String(config.KeyProject, "", "project SDK table (default .gosdk/sdks.xml)")
	flags.String(config.KeyLogLevel, "", "log level: debug, info, warn, error")
	flags.String(config.KeyMirror, "", "release mirror: official, cn or auto")
	for _, key := range []string{config.KeyRootDir, config.KeyVersionsDir, config.KeyProject, config.KeyLogLevel, config.KeyMirror} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	cmd.AddCommand(a.newVersionCmd())
	cmd.AddCommand(a.newToolchainCmd())
	cmd.AddCommand(a.newSdkCmd())
	cmd.AddCommand(a.newDoctorCmd())
	cmd.AddCommand(a.newFixCmd())
	return cmd
}

func (a *App) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" || a.services != nil {
		return nil
	}
	cfg, err := config.Load(a.v, a.configDirs...)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.build == nil {
		return errors.New("cli: no service builder configured")
	}
	services, err := a.build(cmd.Context(), cfg, a.logger)
	if err != nil {
		return fmt.Errorf("cli: initialise: %w", err)
	}
	a.services = services
	return nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gosdk version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gosdk version %s\n", a.version)
			return nil
		},
	}
}

func normalizeVersion(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "go")
	return cleaned
}

func findVersion(versions []models.Version, number string) (*models.Version, error) {
	for i := range versions {
		if versions[i].Number == number {
			return &versions[i], nil
		}
	}
	return nil, fmt.Errorf("version %s not found in remote list", number)
}
