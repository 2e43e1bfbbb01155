package region

import (
	"context"
	"fmt"
	"strings"
)

// 镜像模式。
const (
	ModeOfficial = "official"
	ModeChina    = "cn"
	ModeAuto     = "auto"
)

// MirrorConfig 描述发布索引与下载地址。
type MirrorConfig struct {
	Name         string
	APIBase      string
	DownloadBase string
}

var (
	// GoDevMirror 是官方源。
	GoDevMirror = MirrorConfig{
		Name:         ModeOfficial,
		APIBase:      "https://go.dev/dl/?mode=json&include=all",
		DownloadBase: "https://go.dev/dl/",
	}
	// ChinaMirror 是国内镜像。
	ChinaMirror = MirrorConfig{
		Name:         ModeChina,
		APIBase:      "https://golang.google.cn/dl/?mode=json&include=all",
		DownloadBase: "https://golang.google.cn/dl/",
	}
)

// CountryDetector 返回 ISO 国家代码。
type CountryDetector interface {
	CountryCode(ctx context.Context) (string, error)
}

// SelectMirror 根据国家代码返回镜像配置。
func SelectMirror(countryCode string) MirrorConfig {
	if strings.EqualFold(strings.TrimSpace(countryCode), "CN") {
		return ChinaMirror
	}
	return GoDevMirror
}

// Resolve 按模式选择镜像。auto 模式下探测失败返回官方源以及探测错误。
func Resolve(ctx context.Context, mode string, detector CountryDetector) (MirrorConfig, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeOfficial:
		return GoDevMirror, nil
	case ModeChina:
		return ChinaMirror, nil
	case ModeAuto:
		if detector == nil {
			detector = NewDetector()
		}
		code, err := detector.CountryCode(ctx)
		if err != nil {
			return GoDevMirror, err
		}
		return SelectMirror(code), nil
	default:
		return MirrorConfig{}, fmt.Errorf("region: unknown mirror mode %q", mode)
	}
}
