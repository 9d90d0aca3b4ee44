package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// 基础信息
	Username *string `gorm:"column:username;uniqueIndex"` // 用户名，全局唯一；微信注册的用户可以没有
	Nickname string  `gorm:"column:nickname"`             // 昵称
	Avatar   string  `gorm:"column:avatar"`               // 头像地址
	Email    string  `gorm:"column:email"`                // 邮箱

	// 登录与授权认证相关
	Password string  `gorm:"column:password"`           // 密码，使用 argon2id 储存；任何对外的序列化都不包含这个字段
	Openid   *string `gorm:"column:openid;uniqueIndex"` // 微信 openid ，本地注册的用户可以没有
	Role     string  `gorm:"column:role;default:visitor"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
