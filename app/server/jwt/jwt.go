package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoKey 签名密钥未配置。密钥是延迟校验的，所以在签发/解析时才会出现
var ErrNoKey = errors.New("signature key is not configured")

type JWT struct {
	key       []byte
	expiresIn time.Duration
}

// Claims 会话令牌里携带的最小身份信息，不包含密码和 openid
type Claims struct {
	ID       string
	Username string
	Role     string
	Expires  int64 // Unix second
}

func New(key string, expiresIn time.Duration) *JWT {
	return &JWT{
		key:       []byte(key),
		expiresIn: expiresIn,
	}
}

func (j *JWT) SignToken(claims *Claims) (string, error) {
	if len(j.key) == 0 {
		return "", ErrNoKey
	}

	// 创建声明
	mapClaims := jwt.MapClaims{
		"id":       claims.ID,
		"username": claims.Username,
		"role":     claims.Role,
		"exp":      time.Now().Add(j.expiresIn).Unix(),
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)

	// 签名并返回
	return token.SignedString(j.key)
}

func (j *JWT) ParseClaims(tokenString string) (*Claims, error) {
	if len(j.key) == 0 {
		return nil, ErrNoKey
	}

	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	// 映射字段
	claims := &Claims{}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}

	// 匹配内容
	if mapClaims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		claims.ID, _ = mapClaims["id"].(string)
		claims.Username, _ = mapClaims["username"].(string)
		claims.Role, _ = mapClaims["role"].(string)
		if exp, ok := mapClaims["exp"].(float64); ok {
			claims.Expires = int64(exp)
		}
	} else {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
