package handlers

import (
	"wechat-blog-backend/app/server/jwt"
	"wechat-blog-backend/app/server/wechat"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	l   *zap.Logger    // 日志
	db  *gorm.DB       // 数据库
	rdb *redis.Client  // Redis
	jwt *jwt.JWT       // JWT ，用于无状态验证
	wc  *wechat.Client // 微信开放平台客户端
}

func NewApp(l *zap.Logger, db *gorm.DB, rdb *redis.Client, j *jwt.JWT, wc *wechat.Client) *App {
	return &App{
		l:   l,
		db:  db,
		rdb: rdb,
		jwt: j,
		wc:  wc,
	}
}
