package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/types"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *App) CategoryCreate(c echo.Context) error {
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

	// 创建分类，名字重复由唯一索引拦截
	category := models.Category{Name: req.Name}
	if err := a.db.WithContext(rctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return a.erMsg(c, http.StatusBadRequest, "分类已存在")
		}
		a.l.Error("failed to create category", zap.String("name", req.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 分类变动了，列表缓存作废
	a.invalidateCategoryCache(rctx)

	return a.ok(c, &types.NameInfo{ID: category.ID, Name: category.Name})
}

func (a *App) CategoryList(c echo.Context) error {
	rctx := c.Request().Context()

	// 查询缓存
	if cacheBytes, err := a.rdb.Get(rctx, constants.CacheKeyCategoryList).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query cache for category list", zap.Error(err))
		}
	} else {
		var items []types.NameInfo
		if err = json.Unmarshal(cacheBytes, &items); err != nil {
			a.l.Error("failed to unmarshal category list", zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
			// 可能是无效的缓存，清理掉
			a.rdb.Del(rctx, constants.CacheKeyCategoryList)
		} else {
			return a.ok(c, items)
		}
	}

	// 查询数据库
	var categories []models.Category
	if err := a.db.WithContext(rctx).Order("id ASC").Find(&categories).Error; err != nil {
		a.l.Error("failed to get category list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	items := []types.NameInfo{}
	for _, category := range categories {
		items = append(items, types.NameInfo{ID: category.ID, Name: category.Name})
	}

	// 格式化并加入缓存，方便下一次查询
	if cacheBytes, err := json.Marshal(items); err != nil {
		a.l.Error("failed to marshal category list", zap.Error(err))
	} else {
		a.rdb.Set(rctx, constants.CacheKeyCategoryList, cacheBytes, constants.CacheExpireCategoryList)
	}

	return a.ok(c, items)
}

func (a *App) CategoryDelete(c echo.Context) error {
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

	// 删除分类
	if err := a.db.WithContext(rctx).Delete(&models.Category{}, id).Error; err != nil {
		a.l.Error("failed to delete category", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 分类变动了，列表缓存作废
	a.invalidateCategoryCache(rctx)

	return a.ok(c, nil)
}

func (a *App) invalidateCategoryCache(ctx context.Context) {
	if err := a.rdb.Del(ctx, constants.CacheKeyCategoryList).Err(); err != nil {
		a.l.Error("failed to invalidate category cache", zap.Error(err))
	}
}
