package models

import (
	"errors"
	"time"
)

// Config 保存 gosdk 的全局配置，字段通过 viper 的 mapstructure 标签加载。
type Config struct {
	RootDir      string        `mapstructure:"root-dir"`      // gosdk 根目录，默认 ~/.gosdk
	VersionsDir  string        `mapstructure:"versions-dir"`  // 各工具链安装目录，默认 <root>/versions
	ProjectFile  string        `mapstructure:"project"`       // 项目 SDK 表文件
	APIBase      string        `mapstructure:"api-base"`      // 发布索引地址
	DownloadBase string        `mapstructure:"download-base"` // 下载地址前缀
	Mirror       string        `mapstructure:"mirror"`        // official/cn/auto，设置后覆盖 api-base 与 download-base
	CacheTTL     time.Duration `mapstructure:"cache-ttl"`     // 远程索引缓存时间
	LogLevel     string        `mapstructure:"log-level"`     // debug/info/warn/error
}

// Validate 检查配置中必须存在的字段。
func (c Config) Validate() error {
	if c.RootDir == "" {
		return errors.New("config: root-dir cannot be empty")
	}
	if c.ProjectFile == "" {
		return errors.New("config: project cannot be empty")
	}
	if c.APIBase == "" {
		return errors.New("config: api-base cannot be empty")
	}
	if c.CacheTTL < 0 {
		return errors.New("config: cache-ttl must be non-negative")
	}
	return nil
}
