// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-gallery-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error
	// GetByID 根据 ID 获取用户，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ExistsByUsername 检查用户名是否已占用
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail 检查邮箱是否已注册
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// AppendCreatedImage 原子追加图像 ID 到用户的创建列表
	AppendCreatedImage(ctx context.Context, userID, imageID string) error
	// RemoveCreatedImage 从用户的创建列表移除图像 ID
	RemoveCreatedImage(ctx context.Context, userID, imageID string) error
	// AppendLikedImage 原子追加图像 ID 到用户的点赞列表
	AppendLikedImage(ctx context.Context, userID, imageID string) error
	// RemoveLikedImage 从用户的点赞列表移除图像 ID
	RemoveLikedImage(ctx context.Context, userID, imageID string) error
}
