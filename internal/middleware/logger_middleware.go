// Package middleware 提供Gin中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/notemaster/internal/logger"
)

// TraceIDKey 请求追踪ID在gin上下文中的键名
const TraceIDKey = "trace_id"

// LoggerMiddleware 日志中间件
type LoggerMiddleware struct {
	logger *logrus.Logger
}

// NewLoggerMiddleware 创建日志中间件实例
func NewLoggerMiddleware() *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger.GetLogger(),
	}
}

// RequestLogger 请求日志中间件
// 为每个请求生成追踪ID，并记录完整的请求生命周期信息
func (m *LoggerMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		traceID := uuid.New().String()
		c.Set(TraceIDKey, traceID)

		// 处理请求
		c.Next()

		// 记录响应信息
		latency := time.Since(start)
		status := c.Writer.Status()
		errorMessage := c.Errors.String()

		m.logger.WithFields(logrus.Fields{
			"trace_id":      traceID,
			"status":        status,
			"latency":       latency.String(),
			"client_ip":     c.ClientIP(),
			"method":        c.Request.Method,
			"path":          path,
			"raw_query":     raw,
			"error_message": errorMessage,
		}).Info("HTTP Request")
	}
}
