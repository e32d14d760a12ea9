// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
)

// ImageRepository 图像目录仓储实现
type ImageRepository struct {
	client *Client
}

// NewImageRepository 创建图像仓储
func NewImageRepository(client *Client) *ImageRepository {
	return &ImageRepository{client: client}
}

// Create 创建图像记录
func (r *ImageRepository) Create(ctx context.Context, image *entity.Image) error {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(image).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取图像
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var image entity.Image
	if err := db.First(&image, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}

// ListPublic 按创建时间倒序分页获取公开图像
func (r *ImageRepository) ListPublic(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Image], error) {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.ListPublic")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.Image{}).Where("is_public = ?", true).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count images: %w", err)
	}

	var images []*entity.Image
	if err := db.Where("is_public = ?", true).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&images).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return repository.NewPagedResult(images, total, pagination), nil
}

// Search 按关键词检索公开图像的提示词与标签
func (r *ImageRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.Search")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}

	db := getDB(ctx, r.client.db)
	var images []*entity.Image
	// 提示词模糊匹配或标签数组精确命中，近似原始系统的文本索引检索
	if err := db.Where("is_public = ?", true).
		Where("prompt ILIKE ? OR ? = ANY(tags)", "%"+query+"%", query).
		Order("created_at DESC").
		Limit(limit).
		Find(&images).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	return images, nil
}

// IncrementViews 浏览计数自增
func (r *ImageRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.IncrementViews")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Image{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// Update 整体更新图像记录
func (r *ImageRepository) Update(ctx context.Context, image *entity.Image) error {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(image).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update image: %w", err)
	}
	return nil
}

// Delete 删除图像记录
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ImageRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Image{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
