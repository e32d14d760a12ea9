// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"ai-gallery-api/internal/interfaces/http/dto"
	"ai-gallery-api/pkg/errors"
	"ai-gallery-api/pkg/logger"
)

// respondError 统一错误出口：应用错误按错误码映射状态，其余一律 500
func respondError(ctx context.Context, c *gin.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		dto.FromAppError(c, errors.AsAppError(err))
		return
	}
	logger.Error(ctx, fallback, err)
	dto.InternalError(c, fallback)
}

// currentUserID 从认证中间件注入的上下文中取用户 ID
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
