package inits

import (
	"fmt"
	"os"
	"strings"
	"time"
	"wechat-blog-backend/app/server/config"

	"github.com/joho/godotenv"
)

func Config() (cfg *config.Config, err error) {
	// 先尝试加载 .env 文件，不存在就直接用进程环境变量
	_ = godotenv.Load()

	cfg = &config.Config{}

	// 手动配置映射，基于环境变量的配置用 viper 处理也不是很方便，干脆直接写
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.System.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if listen, exist := os.LookupEnv("LISTEN"); !exist {
		cfg.System.Listen = ":1323" // 默认监听地址
	} else {
		cfg.System.Listen = listen
	}

	if dbconn, exist := os.LookupEnv("DB_CONN"); !exist {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	} else {
		cfg.System.DBConnectionString = dbconn
	}

	if redisconn, exist := os.LookupEnv("REDIS_CONN"); !exist {
		return nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.System.RedisConnectionString = redisconn
	}

	// 认证相关的密钥是延迟校验的：这里缺失不报错，等到第一次用到的时候才报配置错误
	cfg.Auth.TokenSecret = os.Getenv("JWT_TOKEN_SECRET")
	cfg.Wechat.AppID = os.Getenv("APPID")
	cfg.Wechat.AppSecret = os.Getenv("APPSECRET")

	if expStr, exist := os.LookupEnv("JWT_EXPIRES_IN"); !exist {
		cfg.Auth.TokenExpiresIn = 4 * time.Hour // 默认有效期
	} else if exp, err := time.ParseDuration(expStr); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN value %q: %w", expStr, err)
	} else {
		cfg.Auth.TokenExpiresIn = exp
	}

	return cfg, nil
}
