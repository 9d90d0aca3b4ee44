package handlers

import (
	"errors"
	"net/http"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/types"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func userInfo(user *models.User) *types.UserInfo {
	info := &types.UserInfo{
		ID:        user.ID.String(),
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if user.Username != nil {
		info.Username = *user.Username
	}
	return info
}

func (a *App) UserRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 检查用户名是否被占用。这里只是尽早反馈，防重复的最终保障是唯一索引
	var counter int64
	if err := a.db.WithContext(rctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&counter).Error; err != nil {
		a.l.Error("failed to count user", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if counter > 0 {
		return a.erMsg(c, http.StatusBadRequest, "用户名已存在")
	}

	// 处理密码：入库前必须且只做一次哈希
	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建用户
	user := models.User{
		Username: &req.Username,
		Nickname: req.Nickname,
		Password: passwordHash,
		Role:     constants.RoleVisitor,
	}
	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		a.l.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, userInfo(&user))
}

// UserProfile 当前登录用户本人的信息
func (a *App) UserProfile(c echo.Context) error {
	// 抓取 user 信息（认证），不限制角色
	user, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	return a.ok(c, userInfo(user))
}

func (a *App) UserList(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var (
		users      []models.User
		usersCount int64
	)

	page, limit := a.parsePagination(c)
	if err := a.db.WithContext(rctx).Model(&models.User{}).
		Order("created_at ASC").
		Limit(limit).Offset(page * limit).
		Find(&users).Error; err != nil {
		a.l.Error("failed to get user list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.User{}).Count(&usersCount).Error; err != nil {
		a.l.Error("failed to count user", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resUsers := []types.UserInfo{}
	for i := range users {
		resUsers = append(resUsers, *userInfo(&users[i]))
	}

	return a.ok(c, &types.UserListResponse{
		List:    resUsers,
		Count:   usersCount,
		PageMax: a.calcMaxPage(usersCount, limit),
	})
}

func (a *App) UserRoleUpdate(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.UserRoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Role != constants.RoleRoot && req.Role != constants.RoleAuthor && req.Role != constants.RoleVisitor {
		return a.erMsg(c, http.StatusBadRequest, "未知的角色")
	}

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.String("id", id.String()), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 更新用户信息
	if err := a.db.WithContext(rctx).Model(&user).Update("role", req.Role).Error; err != nil {
		a.l.Error("failed to update user", zap.String("id", id.String()), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, userInfo(&user))
}

func (a *App) UserDelete(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 删除用户
	if err := a.db.WithContext(rctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		a.l.Error("failed to delete user", zap.String("id", id.String()), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, nil)
}
