// Package handler 提供HTTP处理器
// 将HTTP请求翻译为服务层调用，对外契约为裸JSON：
// 资源本身、{"error": ...} 或 {"success": true}
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/notemaster/internal/errors"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error string `json:"error"` // 错误消息
}

// SuccessResponse 操作成功响应体
type SuccessResponse struct {
	Success bool `json:"success"` // 恒为true
}

// writeError 将服务层错误写为HTTP响应
// 应用错误按其分类映射状态码，未知错误一律按存储故障处理
func writeError(c *gin.Context, err error) {
	if appErr, ok := apperrors.GetAppError(err); ok {
		if appErr.Code == apperrors.ErrStorage {
			logger.WithField("path", c.Request.URL.Path).Errorf("存储故障: %v", err)
		}
		c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
		return
	}

	logger.WithField("path", c.Request.URL.Path).Errorf("未分类错误: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// parseID 解析路径中的数字ID参数
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "无效的ID参数"})
		return 0, false
	}
	return uint(id), true
}
