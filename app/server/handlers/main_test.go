package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/inits"
	"wechat-blog-backend/app/server/jwt"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/wechat"

	"github.com/alexedwards/argon2id"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestApp 内存 sqlite + 指不通的 redis （缓存路径全部走数据库回退）
func newTestApp(t *testing.T, wcOpts ...wechat.Option) (*App, *echo.Echo) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// 内存库在多个连接之间不共享，限制成单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, inits.Migrate(db))

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	a := NewApp(
		zap.NewNop(),
		db,
		rdb,
		jwt.New("test-secret", time.Hour),
		wechat.NewClient("test-appid", "test-secret", wcOpts...),
	)

	e := echo.New()
	RegisterRoutes(e, a)

	return a, e
}

func createUser(t *testing.T, a *App, username, password, role string) *models.User {
	t.Helper()

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)

	user := &models.User{
		Username: &username,
		Nickname: username,
		Password: hash,
		Role:     role,
	}
	require.NoError(t, a.db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, a *App, user *models.User) string {
	t.Helper()

	token, err := a.issueToken(user)
	require.NoError(t, err)
	return token
}

func doRequest(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// parseData 解开响应信封并把 data 映射到 out
func parseData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

// fakeWechatProvider 模拟微信接口，统计调用次数
type fakeWechatProvider struct {
	srv           *httptest.Server
	exchangeCalls atomic.Int64
	userinfoCalls atomic.Int64
	openid        string
	nickname      string
	exchangeBody  string // 不为空时覆盖换取接口的响应
}

func newFakeWechatProvider(t *testing.T) *fakeWechatProvider {
	f := &fakeWechatProvider{
		openid:   "test-openid",
		nickname: "微信用户",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sns/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.exchangeCalls.Add(1)
		if f.exchangeBody != "" {
			fmt.Fprint(w, f.exchangeBody)
			return
		}
		fmt.Fprintf(w, `{"access_token":"fake-token","expires_in":7200,"openid":"%s"}`, f.openid)
	})
	mux.HandleFunc("/sns/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.userinfoCalls.Add(1)
		fmt.Fprintf(w, `{"openid":"%s","nickname":"%s","headimgurl":"https://example.com/a.png"}`, f.openid, f.nickname)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func publishPostAt(t *testing.T, a *App, title string, publishTime time.Time, author *models.User) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       title,
		Status:      constants.PostStatusPublish,
		PublishTime: &publishTime,
		AuthorID:    author.ID,
	}
	require.NoError(t, a.db.Create(post).Error)
	return post
}
