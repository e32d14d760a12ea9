// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"ai-gallery-api/internal/domain/entity"
)

// AddCommentRequest 添加评论请求
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	ImageID    string    `json:"image_id"`
	Likes      int       `json:"likes"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentListResponse 评论列表响应
type CommentListResponse struct {
	Items []*CommentResponse `json:"items"`
}

// ToCommentResponse 实体转换为响应
func ToCommentResponse(comment *entity.Comment) *CommentResponse {
	if comment == nil {
		return nil
	}
	return &CommentResponse{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		ImageID:    comment.ImageID,
		Likes:      comment.Likes,
		CreatedAt:  comment.CreatedAt,
	}
}

// ToCommentListResponse 实体列表转换为响应
func ToCommentListResponse(comments []*entity.Comment) *CommentListResponse {
	items := make([]*CommentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, ToCommentResponse(comment))
	}
	return &CommentListResponse{Items: items}
}
