// Package project 维护项目级 SDK 表，并提供读写事务。
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/sync/semaphore"

	"github.com/liangyou/gosdk/internal/dom"
	"github.com/liangyou/gosdk/pkg/models"
)

// 读者各占一份权重，写者占满全部权重。
const maxReaders = 1 << 20

var (
	// ErrSdkNotFound 表示项目中不存在指定名称的 SDK。
	ErrSdkNotFound = errors.New("project: sdk not found")
	// ErrSdkExists 表示新增的 SDK 名称已存在。
	ErrSdkExists = errors.New("project: sdk already exists")
	// ErrTokenClosed 表示写事务结束后仍在使用写令牌。
	ErrTokenClosed = errors.New("project: write token is closed")
)

// Project 保存项目的 SDK 表，并通过 sdks.xml 持久化。
type Project struct {
	path   string
	lock   *semaphore.Weighted
	sdks   map[string]models.SDK
	logger *slog.Logger
}

// Option 用于配置 Project。
type Option func(*Project)

// WithLogger 指定日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New 创建一个尚未持久化的空项目。
func New(path string, opts ...Option) *Project {
	p := &Project{
		path:   path,
		lock:   semaphore.NewWeighted(maxReaders),
		sdks:   map[string]models.SDK{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open 读取 path 处的 SDK 表，文件不存在时返回空项目。
func Open(path string, opts ...Option) (*Project, error) {
	p := New(path, opts...)

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Debug("project_file_missing", "path", path)
			return p, nil
		}
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != rootTag {
		return nil, fmt.Errorf("project: %s: missing <%s> root element", path, rootTag)
	}
	for _, el := range dom.Wrap(root).Children(sdkTag) {
		sdk, err := decodeSDK(&sdkElement{Tag: el})
		if err != nil {
			return nil, fmt.Errorf("project: decode sdk: %w", err)
		}
		if strings.TrimSpace(sdk.Name) == "" {
			return nil, fmt.Errorf("project: %s: sdk without name", path)
		}
		if _, dup := p.sdks[sdk.Name]; dup {
			return nil, fmt.Errorf("project: %s: %w: %s", path, ErrSdkExists, sdk.Name)
		}
		p.sdks[sdk.Name] = sdk
	}

	p.logger.Debug("project_loaded", "path", path, "sdk_count", len(p.sdks))
	return p, nil
}

// Path 返回 SDK 表文件路径。
func (p *Project) Path() string {
	return p.path
}

// ReadAction 在共享锁下执行 fn，可与其它读者并发。
func (p *Project) ReadAction(ctx context.Context, fn func(*Reader) error) error {
	if err := p.lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.lock.Release(1)
	return fn(&Reader{p: p})
}

// SDKs 返回按名称排序的 SDK 快照。
func (p *Project) SDKs(ctx context.Context) ([]models.SDK, error) {
	var out []models.SDK
	err := p.ReadAction(ctx, func(r *Reader) error {
		out = r.SDKs()
		return nil
	})
	return out, err
}

// SDK 返回指定名称的 SDK 快照。
func (p *Project) SDK(ctx context.Context, name string) (models.SDK, error) {
	var out models.SDK
	err := p.ReadAction(ctx, func(r *Reader) error {
		sdk, ok := r.SDK(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSdkNotFound, name)
		}
		out = sdk
		return nil
	})
	return out, err
}

// SdksUsingHome 返回 HomePath 指向 home 的 SDK 名称。
func (p *Project) SdksUsingHome(ctx context.Context, home string) ([]string, error) {
	want := filepath.Clean(home)
	var names []string
	err := p.ReadAction(ctx, func(r *Reader) error {
		for _, sdk := range r.SDKs() {
			if sdk.HomePath != "" && filepath.Clean(sdk.HomePath) == want {
				names = append(names, sdk.Name)
			}
		}
		return nil
	})
	return names, err
}

// WriteAction 在独占锁下执行 fn。令牌只在 fn 执行期间有效，
// fn 成功且有改动时在释放锁之前写回文件；fn 失败或写回失败时
// 内存中的 SDK 表恢复到 fn 执行之前。
func (p *Project) WriteAction(ctx context.Context, fn func(*WriteToken) error) error {
	if err := p.lock.Acquire(ctx, maxReaders); err != nil {
		return err
	}
	defer p.lock.Release(maxReaders)

	snapshot := p.cloneLocked()
	tok := &WriteToken{p: p, open: true}
	committed := false
	defer func() {
		tok.open = false
		if !committed {
			p.sdks = snapshot
		}
	}()

	if err := fn(tok); err != nil {
		return err
	}
	if !tok.dirty {
		committed = true
		return nil
	}
	if err := p.saveLocked(); err != nil {
		return err
	}
	committed = true
	p.logger.Info("project_saved", "path", p.path, "sdk_count", len(p.sdks))
	return nil
}

// Save 将当前 SDK 表写回文件。
func (p *Project) Save(ctx context.Context) error {
	return p.WriteAction(ctx, func(tok *WriteToken) error {
		tok.dirty = true
		return nil
	})
}

func (p *Project) saveLocked() error {
	if p.path == "" {
		return errors.New("project: path is not configured")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := dom.Wrap(doc.CreateElement(rootTag))
	for _, sdk := range p.sortedLocked() {
		if err := encodeSDK(&sdkElement{Tag: root.AddChild(sdkTag)}, sdk); err != nil {
			return fmt.Errorf("project: encode sdk %s: %w", sdk.Name, err)
		}
	}
	doc.Indent(2)

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("project: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".sdks-*.xml")
	if err != nil {
		return fmt.Errorf("project: temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("project: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("project: close file: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("project: finalize file: %w", err)
	}
	return nil
}

func (p *Project) cloneLocked() map[string]models.SDK {
	out := make(map[string]models.SDK, len(p.sdks))
	for name, sdk := range p.sdks {
		out[name] = sdk.Clone()
	}
	return out
}

func (p *Project) sortedLocked() []models.SDK {
	out := make([]models.SDK, 0, len(p.sdks))
	for _, sdk := range p.sdks {
		out = append(out, sdk.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reader 是读事务中的只读视图。
type Reader struct {
	p *Project
}

// SDKs 返回按名称排序的 SDK 副本。
func (r *Reader) SDKs() []models.SDK {
	return r.p.sortedLocked()
}

// SDK 返回指定名称的 SDK 副本。
func (r *Reader) SDK(name string) (models.SDK, bool) {
	sdk, ok := r.p.sdks[name]
	return sdk.Clone(), ok
}
