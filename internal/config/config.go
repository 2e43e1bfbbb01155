// Package config 通过 viper 加载 gosdk 配置：默认值、配置文件、GOSDK_ 环境变量与命令行参数。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/liangyou/gosdk/internal/remote"
	"github.com/liangyou/gosdk/internal/storage"
	"github.com/liangyou/gosdk/pkg/models"
)

// 配置键，与命令行参数同名。
const (
	KeyRootDir      = "root-dir"
	KeyVersionsDir  = "versions-dir"
	KeyProject      = "project"
	KeyAPIBase      = "api-base"
	KeyDownloadBase = "download-base"
	KeyMirror       = "mirror"
	KeyCacheTTL     = "cache-ttl"
	KeyLogLevel     = "log-level"
)

// EnvPrefix 是环境变量前缀，例如 GOSDK_ROOT_DIR。
const EnvPrefix = "GOSDK"

// DefaultProjectFile 是相对当前目录的项目 SDK 表。
var DefaultProjectFile = filepath.Join(".gosdk", "sdks.xml")

// SetDefaults 注册全部默认值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRootDir, storage.DefaultRoot())
	v.SetDefault(KeyVersionsDir, "")
	v.SetDefault(KeyProject, DefaultProjectFile)
	v.SetDefault(KeyAPIBase, remote.DefaultAPIBase)
	v.SetDefault(KeyDownloadBase, remote.DefaultDownloadBase)
	v.SetDefault(KeyMirror, "")
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyLogLevel, "warn")
}

// Load 读取配置。configDirs 为空时在当前目录与默认根目录中查找 config.yaml，文件不存在不算错误。
func Load(v *viper.Viper, configDirs ...string) (models.Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(configDirs) == 0 {
		configDirs = []string{".", storage.DefaultRoot()}
	}
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return models.Config{}, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return models.Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.VersionsDir == "" {
		cfg.VersionsDir = filepath.Join(cfg.RootDir, "versions")
	}
	if err := cfg.Validate(); err != nil {
		return models.Config{}, err
	}
	return cfg, nil
}

// ParseLevel 把配置中的日志级别转换为 slog.Level。
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log-level %q: %w", level, err)
	}
	return l, nil
}
