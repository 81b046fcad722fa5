// Package sync 提供离线写入的回放同步
// 连通性从不可用恢复为可用时，将缓存中标记为pending的条目
// 逐条回放到服务端，随后以服务端状态整体重建缓存
package sync

import (
	"context"
	"time"

	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/client/cache"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// DefaultPendingMaxAge 临时ID被视为"尚未在服务端创建"的默认时间窗口
const DefaultPendingMaxAge = 24 * time.Hour

// Reconciler 离线写入回放器
// 每次重连事件至多执行一轮回放，失败不自动重试
type Reconciler struct {
	api           *api.Client
	cache         *cache.Cache
	pendingMaxAge time.Duration
}

// NewReconciler 创建回放器实例
// 参数:
//   apiClient - API客户端
//   noteCache - 笔记快照缓存
//   pendingMaxAge - 临时ID年龄阈值，小于等于0时使用默认的24小时
// 返回:
//   *Reconciler - 回放器实例
func NewReconciler(apiClient *api.Client, noteCache *cache.Cache, pendingMaxAge time.Duration) *Reconciler {
	if pendingMaxAge <= 0 {
		pendingMaxAge = DefaultPendingMaxAge
	}
	return &Reconciler{
		api:           apiClient,
		cache:         noteCache,
		pendingMaxAge: pendingMaxAge,
	}
}

// Reconcile 执行一轮回放
//
// 对每个pending条目按临时ID的年龄分流：ID落在阈值窗口内的视为
// 从未在服务端创建过，走create；更老的ID视为服务端已有、仅本地
// 编辑未同步，按原ID走update。这是一个刻意粗糙的启发式——数据
// 模型中没有权威标志能区分这两种情况。
//
// 每个条目独立回放，单条失败不阻塞其余条目。全部回放后从服务端
// 重新拉取列表并整体覆盖缓存；拉取失败则保持缓存不动，pending
// 条目留到下一次重连事件。
// 返回:
//   error - 回放后刷新缓存失败时返回错误
func (r *Reconciler) Reconcile(ctx context.Context) error {
	notes := r.cache.Snapshot()
	cutoff := time.Now().Add(-r.pendingMaxAge).UnixMilli()

	replayed := 0
	failed := 0
	for _, note := range notes {
		if !note.Pending {
			continue
		}

		if note.ID > cutoff {
			// 窗口内的临时ID：服务端尚无此笔记
			if _, err := r.api.CreateNote(ctx, note.Title, note.Content); err != nil {
				failed++
				logger.WithField("note_id", note.ID).Warnf("回放创建失败: %v", err)
				continue
			}
		} else {
			// 窗口外：服务端已有此笔记，回放本地编辑
			if _, err := r.api.UpdateNote(ctx, note.ID, note.Title, note.Content); err != nil {
				failed++
				logger.WithField("note_id", note.ID).Warnf("回放更新失败: %v", err)
				continue
			}
		}
		replayed++
	}

	if replayed > 0 || failed > 0 {
		logger.Infof("离线写入回放完成: 成功 %d, 失败 %d", replayed, failed)
	}

	// 以服务端权威状态整体重建缓存
	fresh, err := r.api.ListNotes(ctx)
	if err != nil {
		logger.Warnf("回放后刷新缓存失败，pending条目保留至下次重连: %v", err)
		return err
	}
	if err := r.cache.Replace(fresh); err != nil {
		logger.Warnf("回放后写入缓存失败: %v", err)
		return err
	}

	return nil
}
