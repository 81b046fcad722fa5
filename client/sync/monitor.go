package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// Observer 连通性与同步事件的订阅接口
// 取代浏览器端对online/offline事件和可选全局回调的依赖，
// 未关心的事件可嵌入NopObserver获得空实现
type Observer interface {
	// ConnectivityChanged 连通性状态发生变化
	ConnectivityChanged(online bool)
	// SyncCompleted 一轮回放结束
	SyncCompleted(err error)
}

// NopObserver Observer的空实现
type NopObserver struct{}

// ConnectivityChanged 空实现
func (NopObserver) ConnectivityChanged(online bool) {}

// SyncCompleted 空实现
func (NopObserver) SyncCompleted(err error) {}

// Monitor 连通性监视器
// 周期性探测服务端健康接口，在不可达到可达的跳变时
// 触发一次回放（每次跳变至多一次）
type Monitor struct {
	api        *api.Client
	reconciler *Reconciler
	observer   Observer
	interval   time.Duration

	online atomic.Bool
}

// NewMonitor 创建连通性监视器
// 参数:
//   apiClient - API客户端
//   reconciler - 回放器
//   observer - 事件订阅者，nil时使用空实现
//   interval - 探测间隔，小于等于0时默认5秒
// 返回:
//   *Monitor - 监视器实例
func NewMonitor(apiClient *api.Client, reconciler *Reconciler, observer Observer, interval time.Duration) *Monitor {
	if observer == nil {
		observer = NopObserver{}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		api:        apiClient,
		reconciler: reconciler,
		observer:   observer,
		interval:   interval,
	}
}

// Online 返回最近一次探测的连通性状态
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Run 启动监视循环，阻塞直到ctx取消
// 启动时立即探测一次以确定初始状态；初始即在线不触发回放，
// 回放只响应离线到在线的跳变
func (m *Monitor) Run(ctx context.Context) {
	m.online.Store(m.probe(ctx))
	logger.Infof("连通性监视器启动，当前状态: online=%v", m.online.Load())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick 执行一次探测并处理状态跳变
func (m *Monitor) tick(ctx context.Context) {
	now := m.probe(ctx)
	if now == m.online.Load() {
		return
	}

	m.online.Store(now)
	m.observer.ConnectivityChanged(now)

	if now {
		logger.Info("连通性恢复，触发离线写入回放")
		err := m.reconciler.Reconcile(ctx)
		m.observer.SyncCompleted(err)
	} else {
		logger.Info("连通性丢失，进入离线模式")
	}
}

// probe 探测服务端健康接口
func (m *Monitor) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	return m.api.Health(probeCtx) == nil
}
