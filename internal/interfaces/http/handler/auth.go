// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"ai-gallery-api/internal/application/auth"
	"ai-gallery-api/internal/interfaces/http/dto"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register 注册
// @Summary 用户注册
// @Description 创建新用户并签发令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, pair, err := h.authService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, c, err, "registration failed")
		return
	}

	dto.Created(c, dto.ToAuthResponse(user, pair))
}

// Login 登录
// @Summary 用户登录
// @Description 校验凭证并签发令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, pair, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(ctx, c, err, "login failed")
		return
	}

	dto.Success(c, dto.ToAuthResponse(user, pair))
}

// Refresh 刷新令牌
// @Summary 刷新令牌
// @Description 以刷新令牌换取新令牌对
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "刷新令牌"
// @Success 200 {object} dto.Response[dto.TokenResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	pair, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(ctx, c, err, "token refresh failed")
		return
	}

	dto.Success(c, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Profile 当前用户信息
// @Summary 当前用户信息
// @Description 获取当前登录用户的信息
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/me [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.authService.Profile(ctx, currentUserID(c))
	if err != nil {
		respondError(ctx, c, err, "failed to load profile")
		return
	}

	dto.Success(c, dto.ToUserResponse(user))
}
