// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
)

// GenerateImageRequest 图像生成请求
type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ImageResponse 图像响应
type ImageResponse struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	ImageURL    string    `json:"image_url"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	Tags        []string  `json:"tags"`
	Likes       int       `json:"likes"`
	LikedBy     []string  `json:"liked_by"`
	IsPublic    bool      `json:"is_public"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImageListResponse 图像列表响应
type ImageListResponse struct {
	Items []*ImageResponse `json:"items"`
}

// ToImageResponse 实体转换为响应
func ToImageResponse(i *entity.Image) *ImageResponse {
	if i == nil {
		return nil
	}
	return &ImageResponse{
		ID:          i.ID,
		Prompt:      i.Prompt,
		ImageURL:    i.ImageURL,
		CreatorID:   i.CreatorID,
		CreatorName: i.CreatorName,
		Tags:        i.Tags,
		Likes:       i.Likes,
		LikedBy:     i.LikedBy,
		IsPublic:    i.IsPublic,
		Views:       i.Views,
		CreatedAt:   i.CreatedAt,
	}
}

// ToImageListResponse 实体列表转换为响应
func ToImageListResponse(images []*entity.Image) *ImageListResponse {
	items := make([]*ImageResponse, 0, len(images))
	for _, image := range images {
		items = append(items, ToImageResponse(image))
	}
	return &ImageListResponse{Items: items}
}

// ToImagePageMeta 分页结果转换为分页元数据
func ToImagePageMeta(result *repository.PagedResult[*entity.Image]) *PageMeta {
	return &PageMeta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      int(result.Total),
		TotalPages: result.TotalPages,
	}
}
