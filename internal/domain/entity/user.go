// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// User 用户实体
type User struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string         `json:"username" gorm:"type:varchar(30);uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	// CreatedImages 用户生成的图像 ID 列表，生成管线成功后追加
	CreatedImages pq.StringArray `json:"created_images" gorm:"type:text[]"`
	// LikedImages 用户点赞过的图像 ID 列表
	LikedImages pq.StringArray `json:"liked_images" gorm:"type:text[]"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// NewUser 创建新用户
func NewUser(username, email string) *User {
	now := time.Now()
	return &User{
		Username:      username,
		Email:         email,
		CreatedImages: pq.StringArray{},
		LikedImages:   pq.StringArray{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetPassword 设置并散列密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
