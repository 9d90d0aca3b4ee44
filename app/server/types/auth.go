package types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type WechatLoginRequest struct {
	Code string `json:"code"`
}

// LoginToken 本地登录和微信登录统一返回这个结构
type LoginToken struct {
	Token string `json:"token"`
}
