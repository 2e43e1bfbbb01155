// Package sdk 检测项目中失效的 SDK 条目并构造修复动作。
package sdk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// GoTypeID 是内置 Go 工具链类型的标识。
const GoTypeID = "GoSDK"

// PathsModificator 是 SDK 类型推导路径时可用的修改能力。
type PathsModificator interface {
	HomePath() string
	VersionString() string
	SetVersionString(string)
	SetRoots([]string)
}

// Type 描述一类 SDK 的校验与路径推导规则。
type Type interface {
	ID() string
	IsValidHome(ctx context.Context, home string) (bool, error)
	SetupPaths(ctx context.Context, mod PathsModificator) error
}

// Registry 按标识保存已知的 SDK 类型。
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry 创建注册表并登记给定类型。
func NewRegistry(types ...Type) *Registry {
	r := &Registry{types: map[string]Type{}}
	for _, t := range types {
		r.Register(t)
	}
	return r
}

// Register 登记一个类型，同名类型会被替换。
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID()] = t
}

// Lookup 查找类型。
func (r *Registry) Lookup(id string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// IDs 返回排序后的类型标识。
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GoType 校验 Go 工具链安装目录。
type GoType struct{}

// ID 返回 GoTypeID。
func (GoType) ID() string { return GoTypeID }

// IsValidHome 要求目录下存在 go 可执行文件，以及 VERSION 文件或 src/runtime 目录。
func (GoType) IsValidHome(ctx context.Context, home string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(home)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("sdk: stat home: %w", err)
	}
	if !info.IsDir() {
		return false, nil
	}

	bin, err := os.Stat(goBinary(home))
	if err != nil || !bin.Mode().IsRegular() {
		return false, nil
	}

	if _, err := os.Stat(filepath.Join(home, "VERSION")); err == nil {
		return true, nil
	}
	if info, err := os.Stat(filepath.Join(home, "src", "runtime")); err == nil && info.IsDir() {
		return true, nil
	}
	return false, nil
}

// SetupPaths 从 VERSION 文件补全版本字符串，并推导 src 与 bin 路径。
func (GoType) SetupPaths(ctx context.Context, mod PathsModificator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	home := mod.HomePath()
	if home == "" {
		return errors.New("sdk: setup paths: home path is empty")
	}

	version, err := ReadGoVersion(home)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sdk: setup paths: %w", err)
	}
	if version != "" && version != mod.VersionString() {
		mod.SetVersionString(version)
	}

	var roots []string
	for _, dir := range []string{"src", "bin"} {
		p := filepath.Join(home, dir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			roots = append(roots, p)
		}
	}
	mod.SetRoots(roots)
	return nil
}

// ReadGoVersion 读取 Go 安装目录下 VERSION 文件的第一行。
func ReadGoVersion(home string) (string, error) {
	f, err := os.Open(filepath.Join(home, "VERSION"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

func goBinary(home string) string {
	name := "go"
	if runtime.GOOS == "windows" {
		name = "go.exe"
	}
	return filepath.Join(home, "bin", name)
}
