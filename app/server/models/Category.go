package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model

	Name string `gorm:"column:name;uniqueIndex"` // 分类名
}
