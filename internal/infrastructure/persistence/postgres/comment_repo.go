// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-gallery-api/internal/domain/entity"
)

// CommentRepository 评论仓储实现
type CommentRepository struct {
	client *Client
}

// NewCommentRepository 创建评论仓储
func NewCommentRepository(client *Client) *CommentRepository {
	return &CommentRepository{client: client}
}

// Create 创建评论
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(comment).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var comment entity.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListByImage 按创建时间倒序获取图像的评论
func (r *CommentRepository) ListByImage(ctx context.Context, imageID string) ([]*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.ListByImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var comments []*entity.Comment
	if err := db.Where("image_id = ?", imageID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Delete 删除评论
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Comment{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// DeleteByImage 删除图像下的全部评论
func (r *CommentRepository) DeleteByImage(ctx context.Context, imageID string) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.DeleteByImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Comment{}, "image_id = ?", imageID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete image comments: %w", err)
	}
	return nil
}
