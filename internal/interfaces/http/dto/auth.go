// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/pkg/utils"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse 用户信息
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	CreatedImages []string  `json:"created_images"`
	LikedImages   []string  `json:"liked_images"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

// TokenResponse 令牌刷新响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ToUserResponse 实体转换为响应
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		CreatedImages: u.CreatedImages,
		LikedImages:   u.LikedImages,
		CreatedAt:     u.CreatedAt,
	}
}

// ToAuthResponse 组装认证响应
func ToAuthResponse(u *entity.User, pair *utils.TokenPair) *AuthResponse {
	return &AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         ToUserResponse(u),
	}
}
