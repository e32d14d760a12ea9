// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-gallery-api/internal/domain/entity"
)

// ImageRepository 图像目录仓储接口
type ImageRepository interface {
	// Create 创建图像记录，由数据库生成唯一 ID
	Create(ctx context.Context, image *entity.Image) error
	// GetByID 根据 ID 获取图像，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	// ListPublic 按创建时间倒序分页获取公开图像
	ListPublic(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Image], error)
	// Search 按关键词检索公开图像的提示词与标签
	Search(ctx context.Context, query string, limit int) ([]*entity.Image, error)
	// IncrementViews 浏览计数自增
	IncrementViews(ctx context.Context, id string) error
	// Update 整体更新图像记录
	Update(ctx context.Context, image *entity.Image) error
	// Delete 删除图像记录
	Delete(ctx context.Context, id string) error
}
