package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/jwt"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/types"
	"wechat-blog-backend/app/server/wechat"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 登录失败统一用这一句话，不暴露到底是用户名不存在还是密码不对
const invalidCredentialsMessage = "用户名或密码错误"

// authorize 授权判定：没有角色要求就放行（包括匿名），有要求就看角色是否在集合里。
// 认证（ authenticate ）和授权（这里）是两个独立的步骤，失败分别对应 401 和 403
func authorize(requiredRoles []string, role string) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, r := range requiredRoles {
		if r == role {
			return true
		}
	}
	return false
}

// bearerToken 从 Authorization 头提取 Bearer token
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing auth token")
	}

	splits := strings.Split(authHeader, " ")
	if len(splits) != 2 {
		return "", fmt.Errorf("invalid auth header: %s", authHeader)
	}

	if strings.ToLower(splits[0]) != "bearer" {
		return "", fmt.Errorf("unknown auth method: %s", splits[0])
	}

	return splits[1], nil
}

// authenticate 验证令牌并还原出用户。
// 令牌解开后还要回查数据库：能正常解码但用户已经被删除的令牌按未认证处理
func (a *App) authenticate(c echo.Context) (*models.User, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := a.jwt.ParseClaims(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	var user models.User
	if err := a.db.WithContext(c.Request().Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user in token no longer exists")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// authUser 先认证、再授权，返回值风格与 (user, err, statusCode) 保持一致。
// 不带角色要求时表示只需要登录
func (a *App) authUser(c echo.Context, requiredRoles ...string) (*models.User, error, int) {
	user, err := a.authenticate(c)
	if err != nil {
		if errors.Is(err, jwt.ErrNoKey) {
			return nil, err, http.StatusInternalServerError
		}
		return nil, err, http.StatusUnauthorized
	}

	if !authorize(requiredRoles, user.Role) {
		return nil, fmt.Errorf("role %s is not allowed", user.Role), http.StatusForbidden
	}

	return user, nil, http.StatusOK
}

// issueToken 为已经验证过身份的用户签出会话令牌
func (a *App) issueToken(user *models.User) (string, error) {
	var username string
	if user.Username != nil {
		username = *user.Username
	}

	return a.jwt.SignToken(&jwt.Claims{
		ID:       user.ID.String(),
		Username: username,
		Role:     user.Role,
	})
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.erMsg(c, http.StatusUnauthorized, invalidCredentialsMessage)
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 提取密码 hash 并进行校验
	if match, _, err := argon2id.CheckHash(req.Password, user.Password); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		// 密码不一致，返回和用户不存在相同的信息
		return a.erMsg(c, http.StatusUnauthorized, invalidCredentialsMessage)
	}

	// 签出 JWT
	token, err := a.issueToken(&user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 返回
	return a.ok(c, &types.LoginToken{
		Token: token,
	})
}

// AuthWechatRedirect 跳转到微信扫码登录页面
func (a *App) AuthWechatRedirect(c echo.Context) error {
	redirectURI := c.QueryParam("redirect_uri")
	if redirectURI == "" {
		return a.erMsg(c, http.StatusBadRequest, "缺少 redirect_uri 参数")
	}

	return c.Redirect(http.StatusFound, a.wc.AuthorizeURL(redirectURI))
}

// AuthWechatLogin 微信登录：换取 access_token → 按 openid 找本地用户 →
// 找不到就拉取资料自动注册。注册和登录合并成一步，没有单独的确认环节
func (a *App) AuthWechatLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.WechatLoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 授权码为空直接失败，不发起任何网络请求
	if req.Code == "" {
		return a.erMsg(c, http.StatusBadRequest, "请输入微信授权码")
	}

	// 换取 access_token
	if _, err := a.wc.GetAccessToken(rctx, req.Code); err != nil {
		return a.wechatError(c, "failed to get access token", err)
	}

	openid, err := a.wc.Openid()
	if err != nil {
		a.l.Error("failed to get openid", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 用 openid 查找本地用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "openid = ?", openid).Error; err == nil {
		// 已注册，直接签发令牌
		return a.loginWechatUser(c, &user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to find user by openid", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 第一次登录，拉取资料并注册新用户
	info, err := a.wc.GetUserInfo(rctx)
	if err != nil {
		return a.wechatError(c, "failed to get user info", err)
	}

	user = models.User{
		Nickname: info.Nickname,
		Avatar:   info.Headimgurl,
		Openid:   &info.Openid,
		Role:     constants.RoleVisitor,
	}
	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		// openid 的唯一索引是防止并发重复注册的最终保障，这里的查找只是尽量避免
		a.l.Error("failed to create user", zap.String("openid", info.Openid), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.loginWechatUser(c, &user)
}

func (a *App) loginWechatUser(c echo.Context, user *models.User) error {
	token, err := a.issueToken(user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, &types.LoginToken{
		Token: token,
	})
}

// wechatError 把微信客户端的错误映射到响应：密钥缺失是服务端配置问题，
// 微信侧的业务错误带着 errcode/errmsg 原样透出方便排查
func (a *App) wechatError(c echo.Context, msg string, err error) error {
	var apiErr *wechat.APIError

	switch {
	case errors.Is(err, wechat.ErrNoSecret):
		a.l.Error(msg, zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	case errors.As(err, &apiErr):
		a.l.Warn(msg, zap.Int("errcode", apiErr.Errcode), zap.String("errmsg", apiErr.Errmsg))
		return a.erMsg(c, http.StatusBadGateway, apiErr.Error())
	default:
		a.l.Error(msg, zap.Error(err))
		return a.er(c, http.StatusBadGateway)
	}
}
