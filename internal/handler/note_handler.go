package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	noteservice "github.com/weiwangfds/notemaster/internal/service/note"
)

// NoteHandler 笔记处理器
// 处理所有笔记相关的HTTP请求
type NoteHandler struct {
	noteService noteservice.NoteService
}

// NewNoteHandler 创建笔记处理器实例
// 参数:
//   noteService - 笔记服务接口
// 返回:
//   *NoteHandler - 笔记处理器实例
func NewNoteHandler(noteService noteservice.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// ListNotes 获取笔记列表
// @Summary 获取全部笔记
// @Description 返回所有笔记（含标签），按更新时间倒序排列
// @Tags 笔记管理
// @Produce json
// @Success 200 {array} database.Note "笔记列表"
// @Failure 500 {object} ErrorResponse "服务器内部错误"
// @Router /api/notes [get]
func (h *NoteHandler) ListNotes(c *gin.Context) {
	notes, err := h.noteService.ListNotes()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// GetNote 获取笔记详情
// @Summary 获取单个笔记
// @Description 根据ID返回笔记详情（含标签）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} database.Note "笔记详情"
// @Failure 404 {object} ErrorResponse "笔记不存在"
// @Router /api/notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	note, err := h.noteService.GetNoteByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// CreateNote 创建笔记
// @Summary 创建新笔记
// @Description 创建笔记，标题必填，内容可为空
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param note body note.CreateNoteRequest true "创建笔记请求"
// @Success 201 {object} database.Note "创建的笔记"
// @Failure 400 {object} ErrorResponse "标题缺失"
// @Router /api/notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req noteservice.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "标题不能为空"})
		return
	}

	note, err := h.noteService.CreateNote(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// UpdateNote 更新笔记
// @Summary 更新笔记
// @Description 整体替换笔记的标题和内容
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param id path int true "笔记ID"
// @Param note body note.UpdateNoteRequest true "更新笔记请求"
// @Success 200 {object} database.Note "更新后的笔记"
// @Failure 404 {object} ErrorResponse "笔记不存在"
// @Router /api/notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req noteservice.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体格式错误"})
		return
	}

	note, err := h.noteService.UpdateNote(id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// DeleteNote 删除笔记
// @Summary 删除笔记
// @Description 删除笔记及其全部标签关联
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} SuccessResponse "删除成功"
// @Failure 404 {object} ErrorResponse "笔记不存在"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// SetNoteTagsRequest 替换笔记标签请求
type SetNoteTagsRequest struct {
	TagIDs []uint `json:"tag_ids"` // 标签ID集合，空集合表示清除全部标签
}

// SetNoteTags 替换笔记标签
// @Summary 替换笔记的标签集合
// @Description 先清空已有标签关联，再写入给定集合
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param id path int true "笔记ID"
// @Param tags body SetNoteTagsRequest true "标签ID集合"
// @Success 200 {object} SuccessResponse "替换成功"
// @Failure 404 {object} ErrorResponse "笔记或标签不存在"
// @Router /api/notes/{id}/tags [put]
func (h *NoteHandler) SetNoteTags(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetNoteTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体格式错误"})
		return
	}

	if err := h.noteService.SetNoteTags(id, req.TagIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// SearchNotes 搜索笔记
// @Summary 搜索笔记
// @Description 对标题或内容进行大小写不敏感的子串匹配，可叠加标签过滤
// @Tags 笔记管理
// @Produce json
// @Param query path string true "搜索关键词"
// @Param tags query string false "标签过滤，逗号分隔的标签ID列表"
// @Success 200 {array} database.Note "匹配的笔记列表"
// @Failure 500 {object} ErrorResponse "服务器内部错误"
// @Router /api/notes/search/{query} [get]
func (h *NoteHandler) SearchNotes(c *gin.Context) {
	query := c.Param("query")

	var tagIDs []uint
	if raw := c.Query("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "无效的标签过滤参数"})
				return
			}
			tagIDs = append(tagIDs, uint(id))
		}
	}

	notes, err := h.noteService.SearchNotes(query, tagIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}
