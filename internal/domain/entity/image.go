// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// 提示词长度约束
const (
	PromptMinLen = 3
	PromptMaxLen = 500
)

// Image 生成图像的目录记录
type Image struct {
	ID       string `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Prompt   string `json:"prompt" gorm:"type:varchar(500);not null"`
	ImageURL string `json:"image_url" gorm:"type:text;not null"`
	// StorageKey 上传时返回的对象存储标识，删除对象时使用
	StorageKey string `json:"-" gorm:"type:varchar(255)"`
	CreatorID  string `json:"creator_id" gorm:"type:uuid;index;not null"`
	// Tags 由提示词派生的检索标签
	Tags  pq.StringArray `json:"tags" gorm:"type:text[]"`
	Likes int            `json:"likes" gorm:"not null;default:0"`
	// LikedBy 点赞用户集合，Likes 必须始终等于其长度
	LikedBy  pq.StringArray `json:"liked_by" gorm:"type:text[]"`
	IsPublic bool           `json:"is_public" gorm:"not null;default:true"`
	Views    int            `json:"views" gorm:"not null;default:0"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// CreatorName 仅用于展示，不落库
	CreatorName string `json:"creator_name,omitempty" gorm:"-"`
}

// TableName 指定表名
func (Image) TableName() string {
	return "images"
}

// NewImage 创建图像目录记录
func NewImage(prompt, imageURL, storageKey, creatorID string, tags []string) *Image {
	now := time.Now()
	return &Image{
		Prompt:     strings.TrimSpace(prompt),
		ImageURL:   imageURL,
		StorageKey: storageKey,
		CreatorID:  creatorID,
		Tags:       pq.StringArray(tags),
		LikedBy:    pq.StringArray{},
		IsPublic:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsLikedBy 检查用户是否已点赞
func (i *Image) IsLikedBy(userID string) bool {
	for _, id := range i.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Like 添加点赞，保持 Likes == len(LikedBy)
func (i *Image) Like(userID string) bool {
	if i.IsLikedBy(userID) {
		return false
	}
	i.LikedBy = append(i.LikedBy, userID)
	i.Likes = len(i.LikedBy)
	return true
}

// Unlike 取消点赞
func (i *Image) Unlike(userID string) bool {
	for idx, id := range i.LikedBy {
		if id == userID {
			i.LikedBy = append(i.LikedBy[:idx], i.LikedBy[idx+1:]...)
			i.Likes = len(i.LikedBy)
			return true
		}
	}
	return false
}

// DeriveStorageKey 从公开 URL 推导存储标识（最后两段路径去扩展名）
// 仅作为 StorageKey 缺失时的兜底，新记录在上传时持久化返回的标识
func (i *Image) DeriveStorageKey() string {
	if i.StorageKey != "" {
		return i.StorageKey
	}
	parts := strings.Split(i.ImageURL, "/")
	if len(parts) < 2 {
		return ""
	}
	key := strings.Join(parts[len(parts)-2:], "/")
	if dot := strings.LastIndex(key, "."); dot > strings.LastIndex(key, "/") {
		key = key[:dot]
	}
	return key
}
