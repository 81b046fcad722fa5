// Package api_test 提供API客户端的单元测试
// 以真实路由包装的测试服务器为对端，覆盖全部接口的正常和错误路径
package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/internal/database"
	"github.com/weiwangfds/notemaster/internal/middleware"
	"github.com/weiwangfds/notemaster/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupClient 启动测试服务器并返回指向它的客户端
func setupClient(t *testing.T) *api.Client {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	r := router.NewRouter(middleware.NewLoggerMiddleware(), db)
	server := httptest.NewServer(r.GetEngine())
	t.Cleanup(server.Close)

	return api.NewClientWithHTTP(server.URL, server.Client())
}

// TestHealth 测试连通性探测
func TestHealth(t *testing.T) {
	ctx := context.Background()

	t.Run("服务端可达", func(t *testing.T) {
		client := setupClient(t)
		assert.NoError(t, client.Health(ctx))
	})

	t.Run("服务端不可达", func(t *testing.T) {
		client := api.NewClient("http://127.0.0.1:1")
		assert.Error(t, client.Health(ctx))
	})
}

// TestNoteLifecycle 测试笔记的完整生命周期
func TestNoteLifecycle(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	// 创建
	note, err := client.CreateNote(ctx, "生命周期笔记", "初始内容")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)
	assert.Equal(t, "生命周期笔记", note.Title)
	assert.Equal(t, "初始内容", note.Content)

	// 获取
	got, err := client.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
	assert.Equal(t, "生命周期笔记", got.Title)

	// 更新
	updated, err := client.UpdateNote(ctx, note.ID, "新标题", "新内容")
	require.NoError(t, err)
	assert.Equal(t, "新标题", updated.Title)
	assert.Equal(t, "新内容", updated.Content)

	// 列表
	notes, err := client.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)

	// 删除
	require.NoError(t, client.DeleteNote(ctx, note.ID))

	_, err = client.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

// TestCreateNoteValidation 测试创建笔记的校验错误
func TestCreateNoteValidation(t *testing.T) {
	client := setupClient(t)

	note, err := client.CreateNote(context.Background(), "", "没有标题")
	assert.Error(t, err)
	assert.Nil(t, note)
	assert.NotErrorIs(t, err, api.ErrNotFound)
}

// TestNotFoundMapping 测试404到哨兵错误的映射
func TestNotFoundMapping(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	_, err := client.GetNote(ctx, 99999)
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = client.UpdateNote(ctx, 99999, "任意", "任意")
	assert.ErrorIs(t, err, api.ErrNotFound)

	err = client.DeleteNote(ctx, 99999)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

// TestTagOperations 测试标签接口
func TestTagOperations(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	tag, err := client.CreateTag(ctx, "客户端标签")
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)
	assert.Equal(t, "客户端标签", tag.Name)

	t.Run("重复名称报错", func(t *testing.T) {
		dup, err := client.CreateTag(ctx, "客户端标签")
		assert.Error(t, err)
		assert.Nil(t, dup)
	})

	t.Run("标签列表", func(t *testing.T) {
		tags, err := client.GetTags(ctx)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, tag.ID, tags[0].ID)
	})

	t.Run("绑定到笔记并搜索", func(t *testing.T) {
		note, err := client.CreateNote(ctx, "alpha banana", "")
		require.NoError(t, err)
		_, err = client.CreateNote(ctx, "gamma delta", "")
		require.NoError(t, err)

		require.NoError(t, client.SetNoteTags(ctx, note.ID, []uint{tag.ID}))

		// 关键词加标签过滤只命中绑定的笔记
		results, err := client.SearchNotes(ctx, "a", []uint{tag.ID})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, note.ID, results[0].ID)
		require.Len(t, results[0].Tags, 1)
		assert.Equal(t, tag.ID, results[0].Tags[0].ID)

		// 纯关键词搜索
		results, err = client.SearchNotes(ctx, "banana", nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("删除标签", func(t *testing.T) {
		require.NoError(t, client.DeleteTag(ctx, tag.ID))

		tags, err := client.GetTags(ctx)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

// TestContextCancellation 测试上下文取消
func TestContextCancellation(t *testing.T) {
	client := setupClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListNotes(ctx)
	assert.Error(t, err)
}
