package models

import "time"

// Version 描述远程或本地 Go 工具链版本的核心元数据。
type Version struct {
	Number      string    `json:"number" yaml:"number"`                                   // 纯版本号，例如 1.21.0
	FullName    string    `json:"full_name" yaml:"full_name"`                             // 完整版本字符串，例如 go1.21.0
	DownloadURL string    `json:"download_url,omitempty" yaml:"download_url,omitempty"`   // 可下载的 URL
	FileName    string    `json:"file_name,omitempty" yaml:"file_name,omitempty"`         // 下载安装包的文件名
	Checksum    string    `json:"checksum,omitempty" yaml:"checksum,omitempty"`           // 官方提供的 SHA256 校验值
	OS          string    `json:"os,omitempty" yaml:"os,omitempty"`                       // 操作系统标识
	Arch        string    `json:"arch,omitempty" yaml:"arch,omitempty"`                   // 架构标识
	InstallPath string    `json:"install_path,omitempty" yaml:"install_path,omitempty"`   // 本地安装路径（如果已安装）
	InstalledAt time.Time `json:"installed_at,omitempty" yaml:"installed_at,omitempty"`   // 安装时间
}

// DisplayName 返回 go 前缀的版本名。
func (v Version) DisplayName() string {
	if v.FullName != "" {
		return v.FullName
	}
	return "go" + v.Number
}
