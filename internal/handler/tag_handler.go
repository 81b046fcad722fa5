package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tagservice "github.com/weiwangfds/notemaster/internal/service/tag"
)

// TagHandler 标签处理器
// 处理所有标签相关的HTTP请求
type TagHandler struct {
	tagService tagservice.TagService
}

// NewTagHandler 创建标签处理器实例
// 参数:
//   tagService - 标签服务接口
// 返回:
//   *TagHandler - 标签处理器实例
func NewTagHandler(tagService tagservice.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// GetAllTags 获取标签列表
// @Summary 获取全部标签
// @Description 返回所有标签，按名称排序
// @Tags 标签管理
// @Produce json
// @Success 200 {array} database.Tag "标签列表"
// @Failure 500 {object} ErrorResponse "服务器内部错误"
// @Router /api/tags [get]
func (h *TagHandler) GetAllTags(c *gin.Context) {
	tags, err := h.tagService.GetAllTags()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag 创建标签
// @Summary 创建新标签
// @Description 创建标签，名称必填且唯一；重名或空名返回400
// @Tags 标签管理
// @Accept json
// @Produce json
// @Param tag body tag.CreateTagRequest true "创建标签请求"
// @Success 201 {object} database.Tag "创建的标签"
// @Failure 400 {object} ErrorResponse "名称为空或已存在"
// @Router /api/tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req tagservice.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体格式错误"})
		return
	}

	tag, err := h.tagService.CreateTag(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// DeleteTag 删除标签
// @Summary 删除标签
// @Description 删除标签并解除其与所有笔记的关联
// @Tags 标签管理
// @Produce json
// @Param id path int true "标签ID"
// @Success 200 {object} SuccessResponse "删除成功"
// @Failure 404 {object} ErrorResponse "标签不存在"
// @Router /api/tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
