// Package errors 提供应用程序统一的错误类型
// 错误分为四类：参数校验、资源未找到、唯一性冲突和存储引擎故障，
// 每类对应固定的HTTP状态码
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	ErrValidation ErrorCode = 1001 // 参数校验错误
	ErrNotFound   ErrorCode = 1002 // 资源未找到
	ErrConflict   ErrorCode = 1003 // 唯一性冲突（如标签重名）
	ErrStorage    ErrorCode = 1004 // 存储引擎故障
)

// AppError 应用错误结构体
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.OriginalError != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.OriginalError)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，支持errors.Is/As链式判断
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// HTTPStatus 返回错误对应的HTTP状态码
// 注意：冲突错误按对外契约返回400而非409
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation, ErrConflict:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation 创建参数校验错误
func NewValidation(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

// NewNotFound 创建资源未找到错误
func NewNotFound(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message}
}

// NewConflict 创建唯一性冲突错误
func NewConflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

// NewStorage 包装存储引擎故障
// 参数:
//   message - 错误消息
//   err - 底层存储错误
func NewStorage(message string, err error) *AppError {
	return &AppError{Code: ErrStorage, Message: message, OriginalError: err}
}

// GetAppError 从错误中提取应用错误
// 返回应用错误实例和是否成功提取的标志
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound 判断错误是否为资源未找到
func IsNotFound(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == ErrNotFound
}

// IsConflict 判断错误是否为唯一性冲突
func IsConflict(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == ErrConflict
}

// IsValidation 判断错误是否为参数校验错误
func IsValidation(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == ErrValidation
}
