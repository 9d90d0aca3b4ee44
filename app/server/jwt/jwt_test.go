package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	j := New("test-secret", time.Hour)

	token, err := j.SignToken(&Claims{
		ID:       "b3b2f1a0-0000-0000-0000-000000000001",
		Username: "root",
		Role:     "root",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ParseClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "b3b2f1a0-0000-0000-0000-000000000001", claims.ID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "root", claims.Role)
	assert.Greater(t, claims.Expires, time.Now().Unix())
}

func TestParseExpiredToken(t *testing.T) {
	// 有效期为负，签出来就是过期的
	j := New("test-secret", -time.Minute)

	token, err := j.SignToken(&Claims{ID: "id", Role: "visitor"})
	require.NoError(t, err)

	_, err = j.ParseClaims(token)
	require.Error(t, err)
}

func TestParseWrongKey(t *testing.T) {
	j1 := New("secret-one", time.Hour)
	j2 := New("secret-two", time.Hour)

	token, err := j1.SignToken(&Claims{ID: "id", Role: "visitor"})
	require.NoError(t, err)

	_, err = j2.ParseClaims(token)
	require.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	j := New("test-secret", time.Hour)

	_, err := j.ParseClaims("")
	require.Error(t, err)

	_, err = j.ParseClaims("not.a.token")
	require.Error(t, err)
}

func TestMissingKey(t *testing.T) {
	// 密钥延迟校验：没配置时签发和解析都报 ErrNoKey
	j := New("", time.Hour)

	_, err := j.SignToken(&Claims{ID: "id"})
	require.ErrorIs(t, err, ErrNoKey)

	_, err = j.ParseClaims("whatever")
	require.ErrorIs(t, err, ErrNoKey)
}
