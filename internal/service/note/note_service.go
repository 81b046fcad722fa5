// Package note 提供笔记管理相关的业务逻辑服务
// 包含笔记的创建、修改、删除、查询、搜索和标签关联等核心功能
package note

import (
	"errors"
	"fmt"
	"strings"

	"github.com/weiwangfds/notemaster/internal/database"
	apperrors "github.com/weiwangfds/notemaster/internal/errors"
	"github.com/weiwangfds/notemaster/internal/logger"
	"gorm.io/gorm"
)

// NoteService 笔记服务接口
// 笔记数据的权威拥有者，所有客户端缓存均可由此重建
type NoteService interface {
	// CreateNote 创建新笔记
	// 参数:
	//   req - 创建笔记请求，标题必填
	// 返回:
	//   *database.Note - 创建的笔记信息
	//   error - 错误信息
	CreateNote(req *CreateNoteRequest) (*database.Note, error)

	// GetNoteByID 根据ID获取笔记详情（含标签）
	// 参数:
	//   noteID - 笔记ID
	// 返回:
	//   *database.Note - 笔记信息
	//   error - 错误信息
	GetNoteByID(noteID uint) (*database.Note, error)

	// UpdateNote 更新笔记
	// 整体替换标题和内容；与创建不同，此处不校验标题非空
	// 参数:
	//   noteID - 笔记ID
	//   req - 更新请求
	// 返回:
	//   *database.Note - 更新后的笔记信息
	//   error - 错误信息
	UpdateNote(noteID uint, req *UpdateNoteRequest) (*database.Note, error)

	// DeleteNote 删除笔记
	// 同时移除该笔记的所有标签关联
	// 参数:
	//   noteID - 笔记ID
	// 返回:
	//   error - 错误信息
	DeleteNote(noteID uint) error

	// ListNotes 获取全部笔记列表（含标签），按更新时间倒序
	// 返回:
	//   []database.Note - 笔记列表
	//   error - 错误信息
	ListNotes() ([]database.Note, error)

	// SearchNotes 搜索笔记
	// 对标题或内容进行大小写不敏感的子串匹配，可按标签过滤
	// 参数:
	//   query - 搜索关键词
	//   tagIDs - 标签过滤，为空表示不过滤；非空时笔记需携带其中至少一个标签
	// 返回:
	//   []database.Note - 匹配的笔记列表
	//   error - 错误信息
	SearchNotes(query string, tagIDs []uint) ([]database.Note, error)

	// SetNoteTags 整体替换笔记的标签集合
	// 先清空已有关联再写入给定集合；空集合合法，表示清除全部标签
	// 参数:
	//   noteID - 笔记ID
	//   tagIDs - 标签ID集合
	// 返回:
	//   error - 错误信息
	SetNoteTags(noteID uint, tagIDs []uint) error

	// GetNoteTags 获取笔记的标签列表
	// 参数:
	//   noteID - 笔记ID
	// 返回:
	//   []database.Tag - 标签列表
	//   error - 错误信息
	GetNoteTags(noteID uint) ([]database.Tag, error)
}

// CreateNoteRequest 创建笔记请求
type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required"` // 笔记标题，必填
	Content string `json:"content"`                  // 笔记内容，可为空
}

// UpdateNoteRequest 更新笔记请求
type UpdateNoteRequest struct {
	Title   string `json:"title"`   // 笔记标题
	Content string `json:"content"` // 笔记内容
}

// noteService 笔记服务实现
type noteService struct {
	db *gorm.DB
}

// NewNoteService 创建笔记服务实例
// 参数:
//   db - 数据库连接
// 返回:
//   NoteService - 笔记服务接口实例
func NewNoteService(db *gorm.DB) NoteService {
	return &noteService{db: db}
}

// CreateNote 创建新笔记
func (s *noteService) CreateNote(req *CreateNoteRequest) (*database.Note, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidation("标题不能为空")
	}

	note := &database.Note{
		Title:   req.Title,
		Content: req.Content,
	}

	if err := s.db.Create(note).Error; err != nil {
		return nil, apperrors.NewStorage("创建笔记失败", err)
	}

	logger.WithField("note_id", note.ID).Debug("笔记创建成功")
	note.Tags = []database.Tag{}
	return note, nil
}

// GetNoteByID 根据ID获取笔记详情
func (s *noteService) GetNoteByID(noteID uint) (*database.Note, error) {
	var note database.Note
	if err := s.db.Preload("Tags").First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("笔记不存在")
		}
		return nil, apperrors.NewStorage("获取笔记失败", err)
	}
	if note.Tags == nil {
		note.Tags = []database.Tag{}
	}
	return &note, nil
}

// UpdateNote 更新笔记
// 最后写入者获胜，不做并发冲突检测
func (s *noteService) UpdateNote(noteID uint, req *UpdateNoteRequest) (*database.Note, error) {
	var note database.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("笔记不存在")
		}
		return nil, apperrors.NewStorage("获取笔记失败", err)
	}

	// 整体替换标题和内容
	updates := map[string]interface{}{
		"title":   req.Title,
		"content": req.Content,
	}
	if err := s.db.Model(&note).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorage("更新笔记失败", err)
	}

	return s.GetNoteByID(noteID)
}

// DeleteNote 删除笔记
func (s *noteService) DeleteNote(noteID uint) error {
	var note database.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("笔记不存在")
		}
		return apperrors.NewStorage("获取笔记失败", err)
	}

	// 先清理标签关联，再删除笔记本身
	if err := s.db.Where("note_id = ?", noteID).Delete(&database.NoteTag{}).Error; err != nil {
		return apperrors.NewStorage("删除笔记标签关联失败", err)
	}
	if err := s.db.Delete(&note).Error; err != nil {
		return apperrors.NewStorage("删除笔记失败", err)
	}

	logger.WithField("note_id", noteID).Debug("笔记删除成功")
	return nil
}

// ListNotes 获取全部笔记列表
func (s *noteService) ListNotes() ([]database.Note, error) {
	var notes []database.Note
	if err := s.db.Preload("Tags").Order("updated_at DESC").Find(&notes).Error; err != nil {
		return nil, apperrors.NewStorage("获取笔记列表失败", err)
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []database.Tag{}
		}
	}
	return notes, nil
}

// SearchNotes 搜索笔记
func (s *noteService) SearchNotes(query string, tagIDs []uint) ([]database.Note, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	tx := s.db.Preload("Tags").
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)

	if len(tagIDs) > 0 {
		tx = tx.Where("id IN (?)",
			s.db.Model(&database.NoteTag{}).Select("note_id").Where("tag_id IN ?", tagIDs))
	}

	var notes []database.Note
	if err := tx.Order("updated_at DESC").Find(&notes).Error; err != nil {
		return nil, apperrors.NewStorage("搜索笔记失败", err)
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []database.Tag{}
		}
	}
	return notes, nil
}

// SetNoteTags 整体替换笔记的标签集合
// 删除与写入是两条独立语句，中间存在笔记暂时无标签的可见窗口
func (s *noteService) SetNoteTags(noteID uint, tagIDs []uint) error {
	var note database.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("笔记不存在")
		}
		return apperrors.NewStorage("获取笔记失败", err)
	}

	if err := s.db.Where("note_id = ?", noteID).Delete(&database.NoteTag{}).Error; err != nil {
		return apperrors.NewStorage("清除笔记标签关联失败", err)
	}

	// 去重后逐个写入，(note_id, tag_id)联合主键保证配对唯一
	seen := make(map[uint]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true

		var tag database.Tag
		if err := s.db.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("标签 %d 不存在", tagID))
			}
			return apperrors.NewStorage("获取标签失败", err)
		}

		assoc := database.NoteTag{NoteID: noteID, TagID: tagID}
		if err := s.db.Create(&assoc).Error; err != nil {
			return apperrors.NewStorage("写入笔记标签关联失败", err)
		}
	}

	return nil
}

// GetNoteTags 获取笔记的标签列表
func (s *noteService) GetNoteTags(noteID uint) ([]database.Tag, error) {
	note, err := s.GetNoteByID(noteID)
	if err != nil {
		return nil, err
	}
	return note.Tags, nil
}
