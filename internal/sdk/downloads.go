package sdk

import (
	"sync"

	"github.com/liangyou/gosdk/pkg/models"
)

// DownloadTracker 记录正在下载安装的 SDK。
type DownloadTracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewDownloadTracker 创建 DownloadTracker。
func NewDownloadTracker() *DownloadTracker {
	return &DownloadTracker{pending: map[string]struct{}{}}
}

// Start 标记 name 正在下载。已在下载时返回 false；否则返回结束标记的函数。
func (d *DownloadTracker) Start(name string) (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[name]; ok {
		return func() {}, false
	}
	d.pending[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.pending, name)
			d.mu.Unlock()
		})
	}, true
}

// IsDownloading 报告 sdk 是否正在下载。
func (d *DownloadTracker) IsDownloading(sdk models.SDK) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[sdk.Name]
	return ok
}
