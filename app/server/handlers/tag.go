package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/types"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *App) TagCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot, constants.RoleAuthor)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.NameRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Name == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 创建标签，名字重复由唯一索引拦截
	tag := models.Tag{Name: req.Name}
	if err := a.db.WithContext(rctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return a.erMsg(c, http.StatusBadRequest, "标签已存在")
		}
		a.l.Error("failed to create tag", zap.String("name", req.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, &types.NameInfo{ID: tag.ID, Name: tag.Name})
}

func (a *App) TagList(c echo.Context) error {
	rctx := c.Request().Context()

	var tags []models.Tag
	if err := a.db.WithContext(rctx).Order("id ASC").Find(&tags).Error; err != nil {
		a.l.Error("failed to get tag list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	items := []types.NameInfo{}
	for _, tag := range tags {
		items = append(items, types.NameInfo{ID: tag.ID, Name: tag.Name})
	}

	return a.ok(c, items)
}

func (a *App) TagDelete(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 删除标签
	if err := a.db.WithContext(rctx).Delete(&models.Tag{}, id).Error; err != nil {
		a.l.Error("failed to delete tag", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return a.ok(c, nil)
}
