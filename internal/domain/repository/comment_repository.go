// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-gallery-api/internal/domain/entity"
)

// CommentRepository 评论仓储接口
type CommentRepository interface {
	// Create 创建评论
	Create(ctx context.Context, comment *entity.Comment) error
	// GetByID 根据 ID 获取评论，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// ListByImage 按创建时间倒序获取图像的评论
	ListByImage(ctx context.Context, imageID string) ([]*entity.Comment, error)
	// Delete 删除评论
	Delete(ctx context.Context, id string) error
	// DeleteByImage 删除图像下的全部评论
	DeleteByImage(ctx context.Context, imageID string) error
}
