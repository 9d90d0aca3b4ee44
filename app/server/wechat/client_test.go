package wechat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 模拟微信接口，记录每个端点被调用的次数
type fakeProvider struct {
	srv           *httptest.Server
	exchangeCalls atomic.Int64
	userinfoCalls atomic.Int64
	exchangeBody  string
	userinfoBody  string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	f := &fakeProvider{
		exchangeBody: `{"access_token":"token-1","expires_in":7200,"openid":"openid-1"}`,
		userinfoBody: `{"openid":"openid-1","nickname":"测试用户","headimgurl":"https://example.com/a.png"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sns/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.exchangeCalls.Add(1)
		fmt.Fprint(w, f.exchangeBody)
	})
	mux.HandleFunc("/sns/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.userinfoCalls.Add(1)
		fmt.Fprint(w, f.userinfoBody)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func TestGetAccessTokenCacheReuse(t *testing.T) {
	f := newFakeProvider(t)
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	token, err := c.GetAccessToken(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.EqualValues(t, 1, f.exchangeCalls.Load())

	// 有效期内的第二次调用直接复用缓存，不再发请求
	token, err = c.GetAccessToken(context.Background(), "code-2")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.EqualValues(t, 1, f.exchangeCalls.Load())
}

func TestGetAccessTokenExpiredReExchange(t *testing.T) {
	f := newFakeProvider(t)
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	// 先塞一个已经过期的缓存：拿到 1 秒有效期，但已经过去 2 秒
	c.token = &accessTokenInfo{
		accessToken: "stale",
		openid:      "openid-1",
		expiresIn:   1,
		getTime:     time.Now().UnixMilli() - 2000,
	}

	token, err := c.GetAccessToken(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.EqualValues(t, 1, f.exchangeCalls.Load())
}

func TestExpiryArithmetic(t *testing.T) {
	now := time.Now().UnixMilli()
	tok := &accessTokenInfo{expiresIn: 7200, getTime: now - 7200*1000}

	// 恰好到边界还不算过期，超过才算
	assert.False(t, tok.expired(now))
	assert.True(t, tok.expired(now+1))
}

func TestGetAccessTokenNoSecret(t *testing.T) {
	f := newFakeProvider(t)
	c := NewClient("appid", "", WithAPIServer(f.srv.URL))

	_, err := c.GetAccessToken(context.Background(), "code-1")
	require.ErrorIs(t, err, ErrNoSecret)

	// 配置错误在任何网络请求之前就返回
	assert.EqualValues(t, 0, f.exchangeCalls.Load())
}

func TestGetAccessTokenProviderError(t *testing.T) {
	f := newFakeProvider(t)
	f.exchangeBody = `{"errcode":40029,"errmsg":"invalid code"}`
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	_, err := c.GetAccessToken(context.Background(), "bad-code")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 40029, apiErr.Errcode)
	assert.Equal(t, "invalid code", apiErr.Errmsg)
}

func TestGetUserInfo(t *testing.T) {
	f := newFakeProvider(t)
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	_, err := c.GetAccessToken(context.Background(), "code-1")
	require.NoError(t, err)

	info, err := c.GetUserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "openid-1", info.Openid)
	assert.Equal(t, "测试用户", info.Nickname)
	assert.Equal(t, "https://example.com/a.png", info.Headimgurl)
	assert.EqualValues(t, 1, f.userinfoCalls.Load())
}

func TestGetUserInfoWithoutToken(t *testing.T) {
	f := newFakeProvider(t)
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	_, err := c.GetUserInfo(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 0, f.userinfoCalls.Load())
}

func TestGetUserInfoProviderError(t *testing.T) {
	f := newFakeProvider(t)
	f.userinfoBody = `{"errcode":40003,"errmsg":"invalid openid"}`
	c := NewClient("appid", "secret", WithAPIServer(f.srv.URL))

	_, err := c.GetAccessToken(context.Background(), "code-1")
	require.NoError(t, err)

	_, err = c.GetUserInfo(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 40003, apiErr.Errcode)
}
