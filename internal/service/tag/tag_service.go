// Package tag 提供标签管理相关的业务逻辑服务
// 标签独立于笔记创建和删除，删除标签会同时解除其与所有笔记的关联
package tag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/weiwangfds/notemaster/internal/database"
	apperrors "github.com/weiwangfds/notemaster/internal/errors"
	"github.com/weiwangfds/notemaster/internal/logger"
	"gorm.io/gorm"
)

// TagService 标签服务接口
type TagService interface {
	// CreateTag 创建新标签
	// 标签名称区分大小写且必须唯一
	// 参数:
	//   req - 创建标签请求
	// 返回:
	//   *database.Tag - 创建的标签对象
	//   error - 错误信息
	CreateTag(req *CreateTagRequest) (*database.Tag, error)

	// GetAllTags 获取所有标签列表，按名称排序
	// 返回:
	//   []database.Tag - 标签列表
	//   error - 错误信息
	GetAllTags() ([]database.Tag, error)

	// DeleteTag 删除标签
	// 同时移除该标签与所有笔记的关联
	// 参数:
	//   tagID - 标签ID
	// 返回:
	//   error - 错误信息
	DeleteTag(tagID uint) error
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name string `json:"name"` // 标签名称，必填且唯一
}

// tagService 标签服务实现
type tagService struct {
	db *gorm.DB
}

// NewTagService 创建标签服务实例
// 参数:
//   db - 数据库连接
// 返回:
//   TagService - 标签服务接口实例
func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

// CreateTag 创建新标签
func (s *tagService) CreateTag(req *CreateTagRequest) (*database.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidation("标签名称不能为空")
	}

	// 检查标签名称是否已存在
	var existing database.Tag
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, apperrors.NewConflict(fmt.Sprintf("标签名称 '%s' 已存在", name))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewStorage("检查标签名称失败", err)
	}

	tag := &database.Tag{Name: name}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, apperrors.NewStorage("创建标签失败", err)
	}

	logger.WithField("tag_id", tag.ID).Debug("标签创建成功")
	return tag, nil
}

// GetAllTags 获取所有标签列表
func (s *tagService) GetAllTags() ([]database.Tag, error) {
	var tags []database.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperrors.NewStorage("获取标签列表失败", err)
	}
	return tags, nil
}

// DeleteTag 删除标签
func (s *tagService) DeleteTag(tagID uint) error {
	var tag database.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("标签不存在")
		}
		return apperrors.NewStorage("获取标签失败", err)
	}

	// 先解除与所有笔记的关联，再删除标签本身
	if err := s.db.Where("tag_id = ?", tagID).Delete(&database.NoteTag{}).Error; err != nil {
		return apperrors.NewStorage("解除标签关联失败", err)
	}
	if err := s.db.Delete(&tag).Error; err != nil {
		return apperrors.NewStorage("删除标签失败", err)
	}

	logger.WithField("tag_id", tagID).Debug("标签删除成功")
	return nil
}
