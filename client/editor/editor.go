// Package editor 提供编辑器控制器
// 将标题输入与富文本内容绑定到API调用上：输入停顿后防抖自动
// 保存，失焦后短延迟保存，并跟踪最近一次已保存的标题/内容对
// 以跳过无变化的写入。
//
// 编辑器状态由控制器显式持有（State结构体），事件通过Observer
// 接口发布，二者取代了浏览器端的window全局变量和可选全局回调。
package editor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/weiwangfds/notemaster/client/api"
	"github.com/weiwangfds/notemaster/client/cache"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// Observer 编辑器事件的订阅接口
type Observer interface {
	// NotesListChanged 笔记列表已刷新
	NotesListChanged(notes []api.Note)
	// UnsavedChanged 未保存标记发生变化
	// 自动保存失败后置为true并保持，直到某次保存成功
	UnsavedChanged(unsaved bool)
}

// NopObserver Observer的空实现
type NopObserver struct{}

// NotesListChanged 空实现
func (NopObserver) NotesListChanged(notes []api.Note) {}

// UnsavedChanged 空实现
func (NopObserver) UnsavedChanged(unsaved bool) {}

// State 编辑器状态
// 控制器唯一持有的可变状态，调用方通过State()获取副本
type State struct {
	CurrentNoteID int64     // 当前打开的笔记ID，0表示未打开任何笔记
	Title         string    // 当前标题
	Content       string    // 当前内容
	Tags          []api.Tag // 当前笔记的标签
}

// Config 控制器配置
type Config struct {
	AutoSaveDelay time.Duration // 输入停顿后的自动保存延迟，默认3秒
	BlurSaveDelay time.Duration // 失焦后的自动保存延迟，默认500毫秒
}

// Controller 编辑器控制器
type Controller struct {
	mu       sync.Mutex
	api      *api.Client
	cache    *cache.Cache
	tagCache *cache.TagCache
	observer Observer
	online   func() bool
	cfg      Config

	state            State
	lastSavedTitle   string
	lastSavedContent string
	unsaved          bool
	timer            *time.Timer
}

// NewController 创建编辑器控制器
// 参数:
//   apiClient - API客户端
//   noteCache - 笔记快照缓存
//   tagCache - 标签缓存
//   observer - 事件订阅者，nil时使用空实现
//   online - 连通性查询函数，nil时视为始终在线
//   cfg - 控制器配置，零值字段使用默认值
// 返回:
//   *Controller - 控制器实例
func NewController(apiClient *api.Client, noteCache *cache.Cache, tagCache *cache.TagCache, observer Observer, online func() bool, cfg Config) *Controller {
	if observer == nil {
		observer = NopObserver{}
	}
	if online == nil {
		online = func() bool { return true }
	}
	if cfg.AutoSaveDelay <= 0 {
		cfg.AutoSaveDelay = 3 * time.Second
	}
	if cfg.BlurSaveDelay <= 0 {
		cfg.BlurSaveDelay = 500 * time.Millisecond
	}
	return &Controller{
		api:      apiClient,
		cache:    noteCache,
		tagCache: tagCache,
		observer: observer,
		online:   online,
		cfg:      cfg,
	}
}

// State 返回编辑器状态的副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Tags = append([]api.Tag(nil), c.state.Tags...)
	return s
}

// Unsaved 返回未保存标记
func (c *Controller) Unsaved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsaved
}

// ListNotes 获取笔记列表
// 在线时从服务端拉取并刷新缓存，任何失败静默回退到本地快照
func (c *Controller) ListNotes(ctx context.Context) []api.Note {
	if c.online() {
		notes, err := c.api.ListNotes(ctx)
		if err == nil {
			if err := c.cache.Replace(notes); err != nil {
				logger.Warnf("刷新笔记缓存失败: %v", err)
			}
			c.observer.NotesListChanged(notes)
			return notes
		}
		logger.Warnf("拉取笔记列表失败，回退到本地缓存: %v", err)
	}

	notes := c.cache.Snapshot()
	c.observer.NotesListChanged(notes)
	return notes
}

// OpenNote 打开笔记进入编辑
// 在线读取失败或离线时回退到本地快照
// 返回:
//   error - 服务端与缓存中均找不到该笔记时返回错误
func (c *Controller) OpenNote(ctx context.Context, noteID int64) error {
	var note *api.Note

	if c.online() {
		n, err := c.api.GetNote(ctx, noteID)
		if err == nil {
			note = n
		} else {
			logger.Warnf("获取笔记 %d 失败，回退到本地缓存: %v", noteID, err)
		}
	}

	if note == nil {
		for _, n := range c.cache.Snapshot() {
			if n.ID == noteID {
				cached := n
				note = &cached
				break
			}
		}
	}
	if note == nil {
		return fmt.Errorf("笔记 %d 不存在", noteID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.state = State{
		CurrentNoteID: note.ID,
		Title:         note.Title,
		Content:       note.Content,
		Tags:          append([]api.Tag(nil), note.Tags...),
	}
	c.lastSavedTitle = note.Title
	c.lastSavedContent = note.Content
	c.setUnsavedLocked(false)
	return nil
}

// untitledPattern 自动命名的标题格式
var untitledPattern = regexp.MustCompile(`^Untitled-(\d+)$`)

// NewNote 创建新笔记并打开
// 标题自动取"Untitled-N"，N为现有同名笔记的最大编号加一。
// 离线时在缓存中合成一条带临时ID的pending笔记
// 返回:
//   int64 - 新笔记ID（离线时为临时ID）
//   error - 在线创建失败时返回错误
func (c *Controller) NewNote(ctx context.Context) (int64, error) {
	title := c.nextUntitledTitle(ctx)

	var note api.Note
	if c.online() {
		created, err := c.api.CreateNote(ctx, title, "")
		if err != nil {
			return 0, err
		}
		note = *created
		if err := c.cache.Upsert(note); err != nil {
			logger.Warnf("写入笔记缓存失败: %v", err)
		}
	} else {
		// 离线：合成临时成功，等待重连后回放
		now := time.Now()
		note = api.Note{
			ID:        c.cache.NewPendingID(),
			Title:     title,
			Content:   "",
			CreatedAt: now,
			UpdatedAt: now,
			Pending:   true,
		}
		if err := c.cache.Upsert(note); err != nil {
			logger.Warnf("写入离线笔记失败: %v", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.state = State{
		CurrentNoteID: note.ID,
		Title:         note.Title,
		Content:       note.Content,
		Tags:          []api.Tag{},
	}
	c.lastSavedTitle = note.Title
	c.lastSavedContent = note.Content
	c.setUnsavedLocked(false)
	return note.ID, nil
}

// nextUntitledTitle 计算下一个自动命名标题
func (c *Controller) nextUntitledTitle(ctx context.Context) string {
	next := 1
	for _, n := range c.ListNotes(ctx) {
		m := untitledPattern.FindStringSubmatch(n.Title)
		if m == nil {
			continue
		}
		if num, err := strconv.Atoi(m[1]); err == nil && num >= next {
			next = num + 1
		}
	}
	return fmt.Sprintf("Untitled-%d", next)
}

// SetInput 更新标题和内容
// 每次调用重置防抖计时器，输入停顿AutoSaveDelay后触发自动保存
func (c *Controller) SetInput(title, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Title = title
	c.state.Content = content
	c.resetTimerLocked(c.cfg.AutoSaveDelay)
}

// Blur 编辑器失焦
// BlurSaveDelay后触发自动保存
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetTimerLocked(c.cfg.BlurSaveDelay)
}

// Save 手动保存
// 绕过变化检测，保存标题、内容和标签集合；失败返回给调用方，
// 由界面以阻断式通知呈现
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CurrentNoteID == 0 {
		return fmt.Errorf("没有打开的笔记")
	}

	c.stopTimerLocked()
	if err := c.saveLocked(ctx); err != nil {
		return err
	}

	// 标签离线时无法保存，按原样报告错误
	if c.online() {
		tagIDs := make([]uint, 0, len(c.state.Tags))
		for _, t := range c.state.Tags {
			tagIDs = append(tagIDs, t.ID)
		}
		if err := c.api.SetNoteTags(ctx, c.state.CurrentNoteID, tagIDs); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭编辑器
// 页面离开前的最后一次冲刷：取消计时器并立即执行一次自动保存
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.autoSaveLocked(context.Background())
}

// DeleteCurrent 删除当前打开的笔记
// 删除不参与离线队列，离线时直接返回错误
func (c *Controller) DeleteCurrent(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CurrentNoteID == 0 {
		return fmt.Errorf("没有打开的笔记")
	}
	if !c.online() {
		return fmt.Errorf("离线状态下无法删除笔记")
	}

	noteID := c.state.CurrentNoteID
	if err := c.api.DeleteNote(ctx, noteID); err != nil {
		return err
	}
	if err := c.cache.Remove(noteID); err != nil {
		logger.Warnf("从缓存移除笔记 %d 失败: %v", noteID, err)
	}

	c.stopTimerLocked()
	c.state = State{}
	c.lastSavedTitle = ""
	c.lastSavedContent = ""
	c.setUnsavedLocked(false)
	return nil
}

// SetTags 替换当前笔记的标签集合
// 在线时同步到服务端；离线时仅更新本地状态，等手动保存时重试
func (c *Controller) SetTags(ctx context.Context, tags []api.Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CurrentNoteID == 0 {
		return fmt.Errorf("没有打开的笔记")
	}

	c.state.Tags = append([]api.Tag(nil), tags...)

	if !c.online() {
		return nil
	}
	tagIDs := make([]uint, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}
	return c.api.SetNoteTags(ctx, c.state.CurrentNoteID, tagIDs)
}

// ListTags 获取标签列表
// 在线时从服务端拉取并刷新标签缓存，失败回退到缓存
func (c *Controller) ListTags(ctx context.Context) []api.Tag {
	if c.online() {
		tags, err := c.api.GetTags(ctx)
		if err == nil {
			if err := c.tagCache.Replace(tags); err != nil {
				logger.Warnf("刷新标签缓存失败: %v", err)
			}
			return tags
		}
		logger.Warnf("拉取标签列表失败，回退到本地缓存: %v", err)
	}
	return c.tagCache.Snapshot()
}

// CreateTag 创建标签并使标签缓存失效
func (c *Controller) CreateTag(ctx context.Context, name string) (*api.Tag, error) {
	tag, err := c.api.CreateTag(ctx, name)
	if err != nil {
		return nil, err
	}
	c.tagCache.Invalidate()
	return tag, nil
}

// DeleteTag 删除标签并使标签缓存失效
func (c *Controller) DeleteTag(ctx context.Context, tagID uint) error {
	if err := c.api.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	c.tagCache.Invalidate()
	return nil
}

// resetTimerLocked 重置防抖计时器，须持有锁调用
func (c *Controller) resetTimerLocked(delay time.Duration) {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.autoSaveLocked(context.Background())
	})
}

// stopTimerLocked 停止防抖计时器，须持有锁调用
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// autoSaveLocked 执行一次自动保存，须持有锁调用
// 未打开笔记或内容与最近保存一致时跳过；失败只记日志并
// 置未保存标记，不打扰用户
func (c *Controller) autoSaveLocked(ctx context.Context) {
	if c.state.CurrentNoteID == 0 {
		return
	}
	if c.state.Title == c.lastSavedTitle && c.state.Content == c.lastSavedContent {
		return
	}

	if err := c.saveLocked(ctx); err != nil {
		logger.Warnf("自动保存笔记 %d 失败: %v", c.state.CurrentNoteID, err)
	}
}

// saveLocked 保存当前标题/内容，须持有锁调用
// 在线时写服务端，离线时在缓存中合成pending条目（临时成功）。
// 成功后更新最近保存对并清除未保存标记；失败时置未保存标记
func (c *Controller) saveLocked(ctx context.Context) error {
	title := c.state.Title
	content := c.state.Content
	noteID := c.state.CurrentNoteID

	if c.online() {
		updated, err := c.api.UpdateNote(ctx, noteID, title, content)
		if err != nil {
			c.setUnsavedLocked(true)
			return err
		}
		if err := c.cache.Upsert(*updated); err != nil {
			logger.Warnf("写入笔记缓存失败: %v", err)
		}
	} else {
		// 离线：合成临时成功。保留原ID（临时或真实），标记pending
		// 交给重连后的回放决定create还是update
		pending := api.Note{
			ID:        noteID,
			Title:     title,
			Content:   content,
			UpdatedAt: time.Now(),
			Pending:   true,
			Tags:      append([]api.Tag(nil), c.state.Tags...),
		}
		if err := c.cache.Upsert(pending); err != nil {
			c.setUnsavedLocked(true)
			return err
		}
	}

	c.lastSavedTitle = title
	c.lastSavedContent = content
	c.setUnsavedLocked(false)
	return nil
}

// setUnsavedLocked 更新未保存标记并通知订阅者，须持有锁调用
func (c *Controller) setUnsavedLocked(unsaved bool) {
	if c.unsaved == unsaved {
		return
	}
	c.unsaved = unsaved
	c.observer.UnsavedChanged(unsaved)
}
