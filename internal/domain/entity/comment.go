// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// 评论长度约束
const (
	CommentMinLen = 1
	CommentMaxLen = 500
)

// Comment 图像评论
type Comment struct {
	ID       string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text     string         `json:"text" gorm:"type:varchar(500);not null"`
	AuthorID string         `json:"author_id" gorm:"type:uuid;index;not null"`
	ImageID  string         `json:"image_id" gorm:"type:uuid;index;not null"`
	Likes    int            `json:"likes" gorm:"not null;default:0"`
	LikedBy  pq.StringArray `json:"liked_by" gorm:"type:text[]"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// AuthorName 仅用于展示，不落库
	AuthorName string `json:"author_name,omitempty" gorm:"-"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// NewComment 创建评论
func NewComment(imageID, authorID, text string) *Comment {
	now := time.Now()
	return &Comment{
		Text:      text,
		AuthorID:  authorID,
		ImageID:   imageID,
		LikedBy:   pq.StringArray{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
