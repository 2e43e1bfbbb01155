package project

import (
	"fmt"
	"strings"

	"github.com/liangyou/gosdk/pkg/models"
)

// WriteToken 是修改 SDK 表所需的独占能力，只能在 WriteAction 回调内使用。
type WriteToken struct {
	p     *Project
	open  bool
	dirty bool
}

// SDK 返回指定名称的 SDK 副本。
func (t *WriteToken) SDK(name string) (models.SDK, bool) {
	sdk, ok := t.p.sdks[name]
	return sdk.Clone(), ok
}

// Add 新增一个 SDK。
func (t *WriteToken) Add(sdk models.SDK) error {
	if !t.open {
		return ErrTokenClosed
	}
	if strings.TrimSpace(sdk.Name) == "" {
		return fmt.Errorf("project: sdk name is required")
	}
	if _, ok := t.p.sdks[sdk.Name]; ok {
		return fmt.Errorf("%w: %s", ErrSdkExists, sdk.Name)
	}
	t.p.sdks[sdk.Name] = sdk.Clone()
	t.dirty = true
	return nil
}

// Remove 删除一个 SDK。
func (t *WriteToken) Remove(name string) error {
	if !t.open {
		return ErrTokenClosed
	}
	if _, ok := t.p.sdks[name]; !ok {
		return fmt.Errorf("%w: %s", ErrSdkNotFound, name)
	}
	delete(t.p.sdks, name)
	t.dirty = true
	return nil
}

// Modificator 返回指定 SDK 的修改器，修改在 Commit 之前不可见。
func (t *WriteToken) Modificator(name string) (*SdkModificator, error) {
	if !t.open {
		return nil, ErrTokenClosed
	}
	sdk, ok := t.p.sdks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSdkNotFound, name)
	}
	return &SdkModificator{tok: t, name: name, sdk: sdk.Clone()}, nil
}

// SdkModificator 暂存对单个 SDK 的修改。
type SdkModificator struct {
	tok  *WriteToken
	name string
	sdk  models.SDK
}

// Name 返回被修改的 SDK 名称。
func (m *SdkModificator) Name() string { return m.name }

// HomePath 返回暂存的安装目录。
func (m *SdkModificator) HomePath() string { return m.sdk.HomePath }

// VersionString 返回暂存的版本字符串。
func (m *SdkModificator) VersionString() string { return m.sdk.VersionString }

// SetVersionString 设置版本字符串。
func (m *SdkModificator) SetVersionString(v string) { m.sdk.VersionString = v }

// SetHomePath 设置安装目录。
func (m *SdkModificator) SetHomePath(home string) { m.sdk.HomePath = home }

// SetRoots 设置推导路径。
func (m *SdkModificator) SetRoots(roots []string) {
	m.sdk.Roots = append([]string(nil), roots...)
}

// Commit 将暂存修改写入项目，令牌关闭后返回 ErrTokenClosed。
func (m *SdkModificator) Commit() error {
	if !m.tok.open {
		return ErrTokenClosed
	}
	if _, ok := m.tok.p.sdks[m.name]; !ok {
		return fmt.Errorf("%w: %s", ErrSdkNotFound, m.name)
	}
	m.tok.p.sdks[m.name] = m.sdk.Clone()
	m.tok.dirty = true
	return nil
}
