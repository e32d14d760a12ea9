// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-gallery-api/internal/domain/entity"
)

// UserRepository 用户仓储实现
type UserRepository struct {
	client *Client
}

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByUsername")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// ExistsByUsername 检查用户名是否已占用
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.ExistsByUsername")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByEmail 检查邮箱是否已注册
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.ExistsByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// AppendCreatedImage 原子追加图像 ID 到用户的创建列表
func (r *UserRepository) AppendCreatedImage(ctx context.Context, userID, imageID string) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.AppendCreatedImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.User{}).Where("id = ?", userID).
		Update("created_images", gorm.Expr("array_append(created_images, ?)", imageID))
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to append created image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// RemoveCreatedImage 从用户的创建列表移除图像 ID
func (r *UserRepository) RemoveCreatedImage(ctx context.Context, userID, imageID string) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.RemoveCreatedImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.User{}).Where("id = ?", userID).
		Update("created_images", gorm.Expr("array_remove(created_images, ?)", imageID)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove created image: %w", err)
	}
	return nil
}

// AppendLikedImage 原子追加图像 ID 到用户的点赞列表
func (r *UserRepository) AppendLikedImage(ctx context.Context, userID, imageID string) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.AppendLikedImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.User{}).Where("id = ?", userID).
		Update("liked_images", gorm.Expr("array_append(liked_images, ?)", imageID)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append liked image: %w", err)
	}
	return nil
}

// RemoveLikedImage 从用户的点赞列表移除图像 ID
func (r *UserRepository) RemoveLikedImage(ctx context.Context, userID, imageID string) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.RemoveLikedImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.User{}).Where("id = ?", userID).
		Update("liked_images", gorm.Expr("array_remove(liked_images, ?)", imageID)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove liked image: %w", err)
	}
	return nil
}
