// Package test 提供离线编辑到重连回放的端到端测试
// 串联编辑器、缓存、回放器和真实服务端路由，验证完整的
// 离线工作流：离线写入、临时成功、重连回放、缓存重建
package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/client/cache"
	"github.com/weiwangfds/notemaster/client/editor"
	clientsync "github.com/weiwangfds/notemaster/client/sync"
	"github.com/weiwangfds/notemaster/internal/database"
	"github.com/weiwangfds/notemaster/internal/middleware"
	"github.com/weiwangfds/notemaster/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// env 端到端测试环境
type env struct {
	client    *api.Client
	noteCache *cache.Cache
	tagCache  *cache.TagCache

	mu     gosync.Mutex
	online bool
}

func (e *env) setOnline(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.online = v
}

func (e *env) isOnline() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// setupEnv 启动完整服务端并构建客户端环境
func setupEnv(t *testing.T) *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	r := router.NewRouter(middleware.NewLoggerMiddleware(), db)
	server := httptest.NewServer(r.GetEngine())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	return &env{
		client:    api.NewClientWithHTTP(server.URL, server.Client()),
		noteCache: cache.New(filepath.Join(dir, "notes-cache.json")),
		tagCache:  cache.NewTagCache(filepath.Join(dir, "tags-cache.json")),
		online:    true,
	}
}

// TestOfflineEditThenReconcile 测试离线编辑后重连回放的完整流程
func TestOfflineEditThenReconcile(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	c := editor.NewController(e.client, e.noteCache, e.tagCache, nil, e.isOnline, editor.Config{
		AutoSaveDelay: 30 * time.Millisecond,
		BlurSaveDelay: 10 * time.Millisecond,
	})

	// 在线阶段：创建一篇笔记并保存，随后掉线
	onlineID, err := c.NewNote(ctx)
	require.NoError(t, err)
	c.SetInput("在线笔记", "掉线前保存的内容")
	require.NoError(t, c.Save(ctx))

	e.setOnline(false)

	// 离线阶段：编辑已有笔记
	require.NoError(t, c.OpenNote(ctx, onlineID))
	c.SetInput("在线笔记", "离线期间改过的内容")
	require.NoError(t, c.Save(ctx))

	// 离线阶段：新建一篇笔记
	offlineID, err := c.NewNote(ctx)
	require.NoError(t, err)
	assert.Greater(t, offlineID, int64(1_000_000_000_000))
	c.SetInput("离线新笔记", "离线创建的内容")
	require.NoError(t, c.Save(ctx))

	// 两条pending都在缓存里，服务端只知道第一篇的旧内容
	pendingCount := 0
	for _, n := range e.noteCache.Snapshot() {
		if n.Pending {
			pendingCount++
		}
	}
	assert.Equal(t, 2, pendingCount)

	serverSide, err := e.client.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, serverSide, 1)
	assert.Equal(t, "掉线前保存的内容", serverSide[0].Content)

	// 重连回放
	e.setOnline(true)
	reconciler := clientsync.NewReconciler(e.client, e.noteCache, 0)
	require.NoError(t, reconciler.Reconcile(ctx))

	// 服务端收敛到两篇笔记：已有笔记被更新，离线新建的被创建
	serverSide, err = e.client.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, serverSide, 2)

	byTitle := map[string]api.Note{}
	for _, n := range serverSide {
		byTitle[n.Title] = n
	}
	require.Contains(t, byTitle, "在线笔记")
	assert.Equal(t, "离线期间改过的内容", byTitle["在线笔记"].Content)
	assert.Equal(t, onlineID, byTitle["在线笔记"].ID)

	require.Contains(t, byTitle, "离线新笔记")
	assert.Equal(t, "离线创建的内容", byTitle["离线新笔记"].Content)
	// 回放后持有服务端分配的真实ID
	assert.Less(t, byTitle["离线新笔记"].ID, int64(1_000_000_000_000))

	// 缓存以服务端状态重建，pending标记全部消失
	for _, n := range e.noteCache.Snapshot() {
		assert.False(t, n.Pending)
	}
	assert.Len(t, e.noteCache.Snapshot(), 2)
}

// gate 可切换的HTTP闸门
// 关闭时所有请求返回503，用于在真实服务端前模拟网络中断
type gate struct {
	mu   gosync.Mutex
	open bool
	next http.Handler
}

func (g *gate) setOpen(open bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = open
}

func (g *gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()
	if !open {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	g.next.ServeHTTP(w, r)
}

// TestReconnectViaMonitor 测试由连通性监视器驱动的回放
func TestReconnectViaMonitor(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	r := router.NewRouter(middleware.NewLoggerMiddleware(), db)
	g := &gate{next: r.GetEngine()}
	server := httptest.NewServer(g)
	t.Cleanup(server.Close)

	client := api.NewClientWithHTTP(server.URL, server.Client())
	noteCache := cache.New(filepath.Join(t.TempDir(), "notes-cache.json"))

	// 预置一条离线创建的pending笔记
	pendingID := noteCache.NewPendingID()
	require.NoError(t, noteCache.Upsert(api.Note{
		ID: pendingID, Title: "监视器回放", Content: "等待重连", Pending: true,
	}))

	reconciler := clientsync.NewReconciler(client, noteCache, 0)
	monitor := clientsync.NewMonitor(client, reconciler, nil, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Run(ctx)

	// 初始离线探测完成后放开闸门，监视器应触发回放
	time.Sleep(60 * time.Millisecond)
	require.False(t, monitor.Online())
	g.setOpen(true)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		notes := noteCache.Snapshot()
		if len(notes) == 1 && !notes[0].Pending {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	serverSide, err := client.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, serverSide, 1)
	assert.Equal(t, "监视器回放", serverSide[0].Title)
	assert.Equal(t, "等待重连", serverSide[0].Content)

	notes := noteCache.Snapshot()
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Pending)
	assert.NotEqual(t, pendingID, notes[0].ID)
}

// TestFullStackSearchAndTags 测试经由客户端栈的搜索与标签流程
func TestFullStackSearchAndTags(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	c := editor.NewController(e.client, e.noteCache, e.tagCache, nil, e.isOnline, editor.Config{})

	// 建两篇笔记并给其中一篇打标签
	firstID, err := c.NewNote(ctx)
	require.NoError(t, err)
	c.SetInput("alpha banana", "第一篇")
	require.NoError(t, c.Save(ctx))

	_, err = c.NewNote(ctx)
	require.NoError(t, err)
	c.SetInput("gamma delta", "第二篇")
	require.NoError(t, c.Save(ctx))

	tag, err := c.CreateTag(ctx, "重点")
	require.NoError(t, err)
	require.NoError(t, c.OpenNote(ctx, firstID))
	require.NoError(t, c.SetTags(ctx, []api.Tag{*tag}))

	// 关键词搜索
	results, err := e.client.SearchNotes(ctx, "banana", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, firstID, results[0].ID)

	// 关键词加标签过滤
	results, err = e.client.SearchNotes(ctx, "a", []uint{tag.ID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, firstID, results[0].ID)
	require.Len(t, results[0].Tags, 1)
	assert.Equal(t, "重点", results[0].Tags[0].Name)
}
