package wechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const DefaultAPIServer = "https://api.weixin.qq.com"

// ErrNoSecret 应用密钥未配置。密钥是延迟校验的，所以在第一次换取 access_token 时才会出现
var ErrNoSecret = errors.New("wechat app secret is not configured")

// APIError 微信接口返回的业务错误，原样携带 errcode 和 errmsg 方便排查
type APIError struct {
	Errcode int    `json:"errcode"`
	Errmsg  string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error: errcode:%d, errmsg:%s", e.Errcode, e.Errmsg)
}

// UserInfo 微信用户资料接口返回的字段
type UserInfo struct {
	Openid     string `json:"openid"`
	Nickname   string `json:"nickname"`
	Headimgurl string `json:"headimgurl"`
	Unionid    string `json:"unionid"`
}

// accessTokenInfo 进程内唯一一份 access_token 缓存。
// 这是 snsapi_login 网页应用流程，令牌属于应用而不属于单个用户，
// 所以只有一个槽位；多实例部署需要换成共享缓存，这里按单实例假设处理
type accessTokenInfo struct {
	accessToken string
	openid      string
	expiresIn   int64 // 秒
	getTime     int64 // 毫秒（墙钟）
}

// 过期判断：流逝毫秒数和 expiresIn*1000 比较，单位换算不能动
func (t *accessTokenInfo) expired(nowMs int64) bool {
	return nowMs-t.getTime > t.expiresIn*1000
}

type Client struct {
	appID     string
	appSecret string
	apiServer string
	hc        *http.Client

	// 缓存槽位由互斥锁保护；锁同时把刷新路径串行化，避免并发请求重复换取
	mu    sync.Mutex
	token *accessTokenInfo
}

type Option func(*Client)

// WithAPIServer 覆盖接口地址，测试时指向本地的假服务
func WithAPIServer(apiServer string) Option {
	return func(c *Client) {
		c.apiServer = apiServer
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

func NewClient(appID, appSecret string, opts ...Option) *Client {
	c := &Client{
		appID:     appID,
		appSecret: appSecret,
		apiServer: DefaultAPIServer,
		hc:        &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizeURL 拼出微信扫码登录的跳转地址
func (c *Client) AuthorizeURL(redirectURI string) string {
	return fmt.Sprintf(
		"https://open.weixin.qq.com/connect/qrconnect?appid=%s&redirect_uri=%s&response_type=code&scope=snsapi_login&state=STATE#wechat_redirect",
		c.appID, url.QueryEscape(redirectURI),
	)
}

// GetAccessToken 用授权码换取 access_token 。
// 缓存未过期时直接复用，不会再发起网络请求；过期或缺失时整体替换槽位。
// 授权码按微信的语义只能使用一次，缓存避免的是有效期内的重复调用，不是授权码复用
func (c *Client) GetAccessToken(ctx context.Context, code string) (string, error) {
	if c.appSecret == "" {
		return "", ErrNoSecret
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil || c.token.expired(time.Now().UnixMilli()) {
		// 请求 access_token 数据
		reqURL := fmt.Sprintf(
			"%s/sns/oauth2/access_token?appid=%s&secret=%s&code=%s&grant_type=authorization_code",
			c.apiServer, c.appID, c.appSecret, url.QueryEscape(code),
		)

		var res struct {
			APIError
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
			Openid      string `json:"openid"`
		}
		if err := c.getJSON(ctx, reqURL, &res); err != nil {
			return "", fmt.Errorf("failed to request access token: %w", err)
		}
		if res.Errcode != 0 {
			return "", &APIError{Errcode: res.Errcode, Errmsg: res.Errmsg}
		}

		c.token = &accessTokenInfo{
			accessToken: res.AccessToken,
			openid:      res.Openid,
			expiresIn:   res.ExpiresIn,
			getTime:     time.Now().UnixMilli(),
		}
	}

	return c.token.accessToken, nil
}

// Openid 返回当前缓存的 openid ，必须先成功调用过 GetAccessToken
func (c *Client) Openid() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return "", errors.New("no access token has been exchanged yet")
	}
	return c.token.openid, nil
}

// GetUserInfo 用缓存的 access_token + openid 拉取用户资料
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == nil {
		return nil, errors.New("no access token has been exchanged yet")
	}

	reqURL := fmt.Sprintf(
		"%s/sns/userinfo?access_token=%s&openid=%s",
		c.apiServer, token.accessToken, token.openid,
	)

	var res struct {
		APIError
		UserInfo
	}
	if err := c.getJSON(ctx, reqURL, &res); err != nil {
		return nil, fmt.Errorf("failed to request user info: %w", err)
	}
	if res.Errcode != 0 {
		return nil, &APIError{Errcode: res.Errcode, Errmsg: res.Errmsg}
	}

	return &res.UserInfo, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
