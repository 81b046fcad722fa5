// Package client 将配置装配为完整的客户端组件集合
// API客户端、本地缓存、回放器、连通性监视器和编辑器控制器
// 共享同一份配置，此处是它们唯一的组装点
package client

import (
	"context"
	"time"

	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/client/cache"
	"github.com/weiwangfds/notemaster/client/editor"
	clientsync "github.com/weiwangfds/notemaster/client/sync"
	"github.com/weiwangfds/notemaster/config"
)

// App 装配完成的客户端
type App struct {
	API        *api.Client            // 服务端接口客户端
	NoteCache  *cache.Cache           // 笔记快照缓存
	TagCache   *cache.TagCache        // 标签缓存
	Reconciler *clientsync.Reconciler // 离线写入回放器
	Monitor    *clientsync.Monitor    // 连通性监视器
	Editor     *editor.Controller     // 编辑器控制器
}

// NewFromConfig 按配置装配客户端
// 编辑器的连通性查询绑定到监视器的最新探测结果，
// 回放窗口和防抖延迟均来自配置
// 参数:
//   cfg - 客户端配置
//   syncObserver - 连通性/同步事件订阅者，nil时使用空实现
//   editorObserver - 编辑器事件订阅者，nil时使用空实现
// 返回:
//   *App - 装配完成的客户端
func NewFromConfig(cfg config.ClientConfig, syncObserver clientsync.Observer, editorObserver editor.Observer) *App {
	apiClient := api.NewClient(cfg.ServerURL)
	noteCache := cache.New(cfg.CachePath)
	tagCache := cache.NewTagCache(cfg.TagCachePath)

	reconciler := clientsync.NewReconciler(apiClient, noteCache,
		time.Duration(cfg.PendingMaxAgeHours)*time.Hour)
	monitor := clientsync.NewMonitor(apiClient, reconciler, syncObserver,
		time.Duration(cfg.HealthPollSeconds)*time.Second)

	controller := editor.NewController(apiClient, noteCache, tagCache, editorObserver,
		monitor.Online, editor.Config{
			AutoSaveDelay: time.Duration(cfg.AutoSaveDelayMs) * time.Millisecond,
			BlurSaveDelay: time.Duration(cfg.BlurSaveDelayMs) * time.Millisecond,
		})

	return &App{
		API:        apiClient,
		NoteCache:  noteCache,
		TagCache:   tagCache,
		Reconciler: reconciler,
		Monitor:    monitor,
		Editor:     controller,
	}
}

// Run 启动连通性监视循环，阻塞直到ctx取消
// 监视器探测到重连跳变时自动触发一轮离线写入回放
func (a *App) Run(ctx context.Context) {
	a.Monitor.Run(ctx)
}
