package models

// SDK 描述项目中登记的一个 SDK 条目。
type SDK struct {
	Name          string   `json:"name" yaml:"name"`                     // 项目内唯一名称
	Type          string   `json:"type" yaml:"type"`                     // SDK 类型标识，例如 GoSDK
	VersionString string   `json:"version" yaml:"version"`               // 例如 go1.21.0
	HomePath      string   `json:"home" yaml:"home"`                     // 安装目录
	Roots         []string `json:"roots,omitempty" yaml:"roots,omitempty"` // 由 SDK 类型推导的路径
	Stub          bool     `json:"stub,omitempty" yaml:"stub,omitempty"` // 测试替身
}

// Clone 返回不共享切片的副本。
func (s SDK) Clone() SDK {
	if s.Roots != nil {
		s.Roots = append([]string(nil), s.Roots...)
	}
	return s
}

func (s SDK) String() string {
	if s.VersionString == "" {
		return s.Name
	}
	return s.Name + " (" + s.VersionString + ")"
}
