package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Post struct {
	gorm.Model

	// 文章内容
	Title    string         `gorm:"column:title;index"`          // 标题，必填
	Summary  string         `gorm:"column:summary"`              // 摘要
	Content  string         `gorm:"column:content"`              // 正文（ markdown ）
	CoverURL string         `gorm:"column:cover_url"`            // 封面图地址
	Keywords pq.StringArray `gorm:"column:keywords;type:text[]"` // SEO 关键词

	// 状态信息
	Status      string     `gorm:"column:status;default:draft;index"` // draft / publish
	IsRecommend bool       `gorm:"column:is_recommend"`               // 是否推荐
	ViewCount   int64      `gorm:"column:view_count"`                 // 浏览量
	PublishTime *time.Time `gorm:"column:publish_time;index"`         // 发布时间，发布时写入

	// 关联信息
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;index"` // 作者 ID
	CategoryID *uint     `gorm:"column:category_id;index"`         // 分类 ID ， NULL 表示未分类

	// 连接模型时使用
	Author   User      `gorm:"foreignKey:AuthorID"`   // 作者
	Category *Category `gorm:"foreignKey:CategoryID"` // 分类
	Tags     []Tag     `gorm:"many2many:post_tags"`   // 标签
}
