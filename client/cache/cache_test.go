// Package cache_test 提供本地笔记快照缓存的单元测试
package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/client/cache"
)

// newCache 在临时目录中创建缓存实例
func newCache(t *testing.T) (*cache.Cache, string) {
	path := filepath.Join(t.TempDir(), "notes-cache.json")
	return cache.New(path), path
}

// TestSnapshotGracefulDegrade 测试快照读取的降级行为
func TestSnapshotGracefulDegrade(t *testing.T) {
	t.Run("文件不存在时返回空列表", func(t *testing.T) {
		c, _ := newCache(t)
		notes := c.Snapshot()
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
		assert.True(t, c.LastSync().IsZero())
	})

	t.Run("文件内容损坏时返回空列表", func(t *testing.T) {
		c, path := newCache(t)
		require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

		notes := c.Snapshot()
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})
}

// TestReplace 测试快照整体覆盖
func TestReplace(t *testing.T) {
	c, _ := newCache(t)

	before := time.Now()
	require.NoError(t, c.Replace([]api.Note{
		{ID: 1, Title: "第一篇"},
		{ID: 2, Title: "第二篇"},
	}))

	notes := c.Snapshot()
	require.Len(t, notes, 2)
	assert.Equal(t, int64(1), notes[0].ID)
	assert.Equal(t, "第一篇", notes[0].Title)

	// 覆盖会刷新同步时刻
	lastSync := c.LastSync()
	assert.False(t, lastSync.IsZero())
	assert.False(t, lastSync.Before(before.Truncate(time.Millisecond)))

	t.Run("覆盖丢弃旧内容", func(t *testing.T) {
		require.NoError(t, c.Replace([]api.Note{{ID: 3, Title: "第三篇"}}))

		notes := c.Snapshot()
		require.Len(t, notes, 1)
		assert.Equal(t, int64(3), notes[0].ID)
	})

	t.Run("nil列表等价于空列表", func(t *testing.T) {
		require.NoError(t, c.Replace(nil))
		assert.Empty(t, c.Snapshot())
	})
}

// TestUpsert 测试单条写入
func TestUpsert(t *testing.T) {
	c, _ := newCache(t)
	require.NoError(t, c.Replace([]api.Note{
		{ID: 1, Title: "旧的第一篇"},
		{ID: 2, Title: "第二篇"},
	}))

	t.Run("新ID插入头部", func(t *testing.T) {
		require.NoError(t, c.Upsert(api.Note{ID: 3, Title: "新笔记"}))

		notes := c.Snapshot()
		require.Len(t, notes, 3)
		assert.Equal(t, int64(3), notes[0].ID)
	})

	t.Run("已存在的ID原地覆盖", func(t *testing.T) {
		require.NoError(t, c.Upsert(api.Note{ID: 1, Title: "新的第一篇"}))

		notes := c.Snapshot()
		require.Len(t, notes, 3)
		// 位置不变，内容更新
		assert.Equal(t, int64(1), notes[1].ID)
		assert.Equal(t, "新的第一篇", notes[1].Title)
	})
}

// TestRemove 测试按ID移除
func TestRemove(t *testing.T) {
	c, _ := newCache(t)
	require.NoError(t, c.Replace([]api.Note{
		{ID: 1, Title: "保留"},
		{ID: 2, Title: "移除"},
	}))

	require.NoError(t, c.Remove(2))
	notes := c.Snapshot()
	require.Len(t, notes, 1)
	assert.Equal(t, int64(1), notes[0].ID)

	t.Run("移除不存在的ID静默返回", func(t *testing.T) {
		require.NoError(t, c.Remove(99999))
		assert.Len(t, c.Snapshot(), 1)
	})
}

// TestNewPendingID 测试临时ID派发
func TestNewPendingID(t *testing.T) {
	c, _ := newCache(t)

	t.Run("接近当前毫秒时间戳", func(t *testing.T) {
		id := c.NewPendingID()
		now := time.Now().UnixMilli()
		assert.InDelta(t, now, id, 1000)
	})

	t.Run("会话内严格单调递增", func(t *testing.T) {
		var prev int64
		for i := 0; i < 100; i++ {
			id := c.NewPendingID()
			assert.Greater(t, id, prev)
			prev = id
		}
	})
}

// TestPendingFlagRoundTrip 测试pending标记的持久化
func TestPendingFlagRoundTrip(t *testing.T) {
	c, _ := newCache(t)

	require.NoError(t, c.Upsert(api.Note{
		ID:      c.NewPendingID(),
		Title:   "离线笔记",
		Pending: true,
	}))

	notes := c.Snapshot()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Pending)
}

// TestTagCache 测试标签缓存
func TestTagCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags-cache.json")
	c := cache.NewTagCache(path)

	t.Run("文件不存在时返回空列表", func(t *testing.T) {
		assert.Empty(t, c.Snapshot())
	})

	t.Run("覆盖后可读回", func(t *testing.T) {
		require.NoError(t, c.Replace([]api.Tag{{ID: 1, Name: "工作"}}))

		tags := c.Snapshot()
		require.Len(t, tags, 1)
		assert.Equal(t, "工作", tags[0].Name)
	})

	t.Run("失效后降级为空列表", func(t *testing.T) {
		c.Invalidate()
		assert.Empty(t, c.Snapshot())

		// 重复失效不报错
		c.Invalidate()
	})

	t.Run("内容损坏时返回空列表", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("oops"), 0644))
		assert.Empty(t, c.Snapshot())
	})
}
