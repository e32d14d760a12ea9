// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
// 浏览类接口公开，生成与互动类接口要求认证。
// 限流挂在认证之后，已登录请求按用户维度限流，匿名请求按来源 IP 限流。
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers, authRequired, rateLimit gin.HandlerFunc) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rateLimit, h.Auth.Register)
		auth.POST("/login", rateLimit, h.Auth.Login)
		auth.POST("/refresh", rateLimit, h.Auth.Refresh)
		auth.GET("/me", authRequired, rateLimit, h.Auth.Profile)
	}

	// 图像浏览（公开）
	images := v1.Group("/images", rateLimit)
	{
		images.GET("", h.Image.List)
		images.GET("/search", h.Image.Search)
		images.GET("/:id", h.Image.Get)
		images.GET("/:id/comments", h.Comment.List)
	}

	// 图像生成与互动（需认证）
	authed := v1.Group("/images", authRequired, rateLimit)
	{
		authed.POST("/generate", h.Image.Generate)
		authed.PUT("/:id/like", h.Image.ToggleLike)
		authed.DELETE("/:id", h.Image.Delete)
		authed.POST("/:id/comments", h.Comment.Add)
	}

	// 评论删除（需认证）
	comments := v1.Group("/comments", authRequired, rateLimit)
	{
		comments.DELETE("/:cid", h.Comment.Delete)
	}
}
