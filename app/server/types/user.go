package types

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type UserRoleUpdateRequest struct {
	Role string `json:"role"`
}

// UserInfo 对外的用户信息，永远不包含密码哈希和 openid
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createTime"`
}

type UserListResponse struct {
	List    []UserInfo `json:"list"`
	Count   int64      `json:"count"`
	PageMax int64      `json:"pageMax"`
}
