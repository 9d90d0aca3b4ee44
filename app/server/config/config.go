package config

import "time"

type Config struct {
	System struct {
		IsProd                bool   // 是否为生产环境
		Listen                string // 监听地址
		DBConnectionString    string // Postgres 数据库的连接字符串
		RedisConnectionString string // Redis 数据库的连接字符串
	}
	Auth struct {
		TokenSecret    string        // 会话令牌的签名密钥，缺失时在第一次签发/校验时报配置错误，而不是在启动时
		TokenExpiresIn time.Duration // 会话令牌的有效期
	}
	Wechat struct {
		AppID     string // 微信开放平台应用 ID
		AppSecret string // 微信开放平台应用密钥，缺失时在第一次换取 access_token 时报配置错误
	}
}
