// Package platform 检查当前主机能否下载并安装官方 .tar.gz 工具链。
package platform

import (
	"fmt"
	"os"
	"runtime"

	"github.com/liangyou/gosdk/pkg/models"
)

// 官方以 .tar.gz 发布的平台，windows 只有 zip/msi。
var supportedOS = map[string]struct{}{
	"linux":   {},
	"darwin":  {},
	"freebsd": {},
}

var supportedArch = map[string]struct{}{
	"amd64":   {},
	"arm64":   {},
	"386":     {},
	"ppc64le": {},
	"s390x":   {},
}

// Checker 校验主机平台与安装目录。
type Checker struct {
	cfg    models.Config
	goos   func() string
	goarch func() string
}

// NewChecker 创建平台检测器。
func NewChecker(cfg models.Config) *Checker {
	return &Checker{
		cfg:    cfg,
		goos:   func() string { return runtime.GOOS },
		goarch: func() string { return runtime.GOARCH },
	}
}

// Validate 校验平台受支持且安装目录可创建。
func (c *Checker) Validate() error {
	if _, ok := supportedOS[c.goos()]; !ok {
		return fmt.Errorf("platform: no .tar.gz toolchains for %s", c.goos())
	}
	if _, ok := supportedArch[c.goarch()]; !ok {
		return fmt.Errorf("platform: unsupported architecture %s", c.goarch())
	}

	dir := c.cfg.VersionsDir
	if dir == "" {
		dir = c.cfg.RootDir
	}
	if dir == "" {
		return fmt.Errorf("platform: install directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("platform: cannot access install directory %s: %w", dir, err)
	}
	return nil
}
