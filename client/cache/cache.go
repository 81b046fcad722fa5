// Package cache 提供客户端本地笔记快照
// 镜像最近一次成功的全量拉取，仅限单机使用，随时可由服务端重建。
// 底层为单个JSON文件，写入采用原子替换；文件缺失或损坏时
// 一律降级为空快照，绝不向调用方抛错
package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// snapshotFile 缓存文件的持久化格式
type snapshotFile struct {
	Notes    []api.Note `json:"notes"`     // 最近一次全量拉取的笔记列表
	LastSync int64      `json:"last_sync"` // 最近一次同步时刻（毫秒时间戳）
}

// Cache 笔记快照缓存
type Cache struct {
	mu     sync.Mutex
	path   string
	lastID int64 // 会话内已派发的最大临时ID，保证单调递增
}

// New 创建缓存实例
// 参数:
//   path - 缓存文件路径，目录不存在时在首次写入前创建
// 返回:
//   *Cache - 缓存实例
func New(path string) *Cache {
	return &Cache{path: path}
}

// Snapshot 读取当前快照
// 文件缺失、不可读或内容损坏时返回空列表
func (c *Cache) Snapshot() []api.Note {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf := c.load()
	if sf.Notes == nil {
		return []api.Note{}
	}
	return sf.Notes
}

// LastSync 返回最近一次同步时刻
// 从未同步过时返回零值时间
func (c *Cache) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf := c.load()
	if sf.LastSync == 0 {
		return time.Time{}
	}
	return time.UnixMilli(sf.LastSync)
}

// Replace 以给定列表整体覆盖快照，并刷新同步时刻
// 覆盖会丢弃此前所有pending标记
func (c *Cache) Replace(notes []api.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if notes == nil {
		notes = []api.Note{}
	}
	return c.store(snapshotFile{
		Notes:    notes,
		LastSync: time.Now().UnixMilli(),
	})
}

// Upsert 写入单条笔记
// 新ID插入列表头部，已存在的ID原地覆盖
func (c *Cache) Upsert(note api.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf := c.load()
	for i := range sf.Notes {
		if sf.Notes[i].ID == note.ID {
			sf.Notes[i] = note
			return c.store(sf)
		}
	}
	sf.Notes = append([]api.Note{note}, sf.Notes...)
	return c.store(sf)
}

// Remove 按ID移除笔记
// ID不存在时静默返回
func (c *Cache) Remove(noteID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf := c.load()
	kept := sf.Notes[:0]
	for _, n := range sf.Notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	sf.Notes = kept
	return c.store(sf)
}

// NewPendingID 派发一个新的临时笔记ID
// 取当前毫秒时间戳，同一会话内若发生碰撞则顺延，保证单调递增；
// 不保证跨设备全局唯一（已接受的局限）
func (c *Cache) NewPendingID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// load 从磁盘读取快照，任何失败都降级为空快照
func (c *Cache) load() snapshotFile {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("读取缓存文件失败，降级为空快照: %v", err)
		}
		return snapshotFile{}
	}

	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		logger.Warnf("缓存文件内容损坏，降级为空快照: %v", err)
		return snapshotFile{}
	}
	return sf
}

// store 将快照原子写入磁盘
func (c *Cache) store(sf snapshotFile) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(sf)
	if err != nil {
		return err
	}
	return atomic.WriteFile(c.path, bytes.NewReader(data))
}
