package models

import "time"

// Diagnosis 是一次项目体检的结果，可直接序列化为 JSON 或 YAML。
type Diagnosis struct {
	Project   string       `json:"project" yaml:"project"`
	CheckedAt time.Time    `json:"checked_at" yaml:"checked_at"`
	Total     int          `json:"total" yaml:"total"`
	Invalid   []InvalidSDK `json:"invalid" yaml:"invalid"`
}

// InvalidSDK 描述一个失效 SDK 及建议的修复。
type InvalidSDK struct {
	Name            string `json:"name" yaml:"name"`
	Type            string `json:"type" yaml:"type"`
	ExpectedVersion string `json:"expected_version,omitempty" yaml:"expected_version,omitempty"`
	HomePath        string `json:"home,omitempty" yaml:"home,omitempty"`
	FixKind         string `json:"fix_kind,omitempty" yaml:"fix_kind,omitempty"` // local 或 download，无修复时为空
	Fix             string `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// Healthy 报告项目中是否没有失效 SDK。
func (d Diagnosis) Healthy() bool {
	return len(d.Invalid) == 0
}
