package inits

import (
	"fmt"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/models"

	"github.com/alexedwards/argon2id"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func DB(conn string) (db *gorm.DB, err error) {
	// 打开连接
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{TranslateError: true}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 初始化启动数据
	if err = initData(db); err != nil {
		return nil, fmt.Errorf("failed to init data into database: %w", err)
	}

	// 返回
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
	)
}

func initData(db *gorm.DB) (err error) {
	// 查询现有记录数量
	var counter int64

	// 初始化用户
	if err = db.Model(&models.User{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter == 0 { // 没有任何用户，添加初始的 root 用户
		// 创建密码
		var password string
		if password, err = argon2id.CreateHash("password", argon2id.DefaultParams); err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}

		// 插入记录
		username := "root"
		if err = db.Create(&models.User{
			Username: &username,
			Nickname: "管理员",
			Role:     constants.RoleRoot,
			Password: password,
		}).Error; err != nil {
			return fmt.Errorf("failed to create root user: %w", err)
		}
	}

	// 初始化分类
	if err = db.Model(&models.Category{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get category count: %w", err)
	} else if counter == 0 { // 没有任何分类，添加默认分类
		if err = db.Create(&models.Category{
			Name: "默认分类",
		}).Error; err != nil {
			return fmt.Errorf("failed to create default category: %w", err)
		}
	}

	// 已有数据或全部导入成功
	return nil
}
