package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// TagCache 标签列表缓存
// 离线时作为标签读取的后备来源；标签创建或删除后整体失效
type TagCache struct {
	mu   sync.Mutex
	path string
}

// NewTagCache 创建标签缓存实例
func NewTagCache(path string) *TagCache {
	return &TagCache{path: path}
}

// Snapshot 读取缓存的标签列表
// 文件缺失或损坏时返回空列表
func (c *TagCache) Snapshot() []api.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("读取标签缓存失败，降级为空列表: %v", err)
		}
		return []api.Tag{}
	}

	var tags []api.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		logger.Warnf("标签缓存内容损坏，降级为空列表: %v", err)
		return []api.Tag{}
	}
	return tags
}

// Replace 以给定列表整体覆盖标签缓存
func (c *TagCache) Replace(tags []api.Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tags == nil {
		tags = []api.Tag{}
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return atomic.WriteFile(c.path, bytes.NewReader(data))
}

// Invalidate 删除缓存文件
// 标签创建或删除后调用，下次在线读取时重建
func (c *TagCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("删除标签缓存失败: %v", err)
	}
}
