package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"wechat-blog-backend/app/server/constants"
	"wechat-blog-backend/app/server/models"
	"wechat-blog-backend/app/server/types"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func postInfo(post *models.Post, withContent bool) *types.PostInfo {
	info := &types.PostInfo{
		ID:          post.ID,
		Title:       post.Title,
		Summary:     post.Summary,
		CoverURL:    post.CoverURL,
		Keywords:    post.Keywords,
		Status:      post.Status,
		IsRecommend: post.IsRecommend,
		ViewCount:   post.ViewCount,
		PublishTime: post.PublishTime,
		Tags:        []types.NameInfo{},
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	if withContent {
		info.Content = post.Content
	}
	if post.Author.ID != uuid.Nil {
		info.Author = userInfo(&post.Author)
	}
	if post.Category != nil {
		info.Category = &types.NameInfo{ID: post.Category.ID, Name: post.Category.Name}
	}
	for _, tag := range post.Tags {
		info.Tags = append(info.Tags, types.NameInfo{ID: tag.ID, Name: tag.Name})
	}
	return info
}

func (a *App) postMapFields(req *types.PostInput, post *models.Post) {
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Summary != nil {
		post.Summary = *req.Summary
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.CoverURL != nil {
		post.CoverURL = *req.CoverURL
	}
	if req.Keywords != nil {
		post.Keywords = *req.Keywords
	}
	if req.IsRecommend != nil {
		post.IsRecommend = *req.IsRecommend
	}
	if req.CategoryID != nil {
		post.CategoryID = req.CategoryID
	}
}

// postSetStatus 状态流转：发布的时候记录发布时间，已经发布过的不覆盖
func (a *App) postSetStatus(post *models.Post, status *string) {
	if status == nil {
		return
	}
	post.Status = *status
	if *status == constants.PostStatusPublish && post.PublishTime == nil {
		now := time.Now()
		post.PublishTime = &now
	}
}

// postResolveTags 根据请求里的标签 ID 列表查出标签实体
func (a *App) postResolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := a.db.WithContext(ctx).Find(&tags, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (a *App) PostCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, constants.RoleRoot, constants.RoleAuthor)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.PostInput
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 标题必填
	if req.Title == nil || *req.Title == "" {
		return a.erMsg(c, http.StatusBadRequest, "缺少文章标题")
	}

	// 标题查重
	var counter int64
	if err := a.db.WithContext(rctx).Model(&models.Post{}).Where("title = ?", *req.Title).Count(&counter).Error; err != nil {
		a.l.Error("failed to count post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if counter > 0 {
		return a.erMsg(c, http.StatusBadRequest, "文章已存在")
	}

	// 创建
	post := models.Post{
		AuthorID: user.ID,
		Status:   constants.PostStatusDraft,
	}
	a.postMapFields(&req, &post)
	a.postSetStatus(&post, req.Status)

	// 校验分类
	if post.CategoryID != nil {
		var category models.Category
		if err := a.db.WithContext(rctx).First(&category, "id = ?", *post.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return a.erMsg(c, http.StatusBadRequest, "分类不存在")
			}
			a.l.Error("failed to find category", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 关联标签
	if req.TagIDs != nil {
		tags, err := a.postResolveTags(rctx, *req.TagIDs)
		if err != nil {
			a.l.Error("failed to find tags", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		post.Tags = tags
	}

	if err := a.db.WithContext(rctx).Create(&post).Error; err != nil {
		a.l.Error("failed to create post", zap.String("title", post.Title), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 文章变动了，归档缓存作废
	a.invalidateArchiveCache(rctx)

	return a.ok(c, post.ID)
}

func (a *App) PostList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		posts      []models.Post
		postsCount int64
	)

	page, limit := a.parsePagination(c)
	if err := a.db.WithContext(rctx).Model(&models.Post{}).
		Preload("Author").Preload("Category").Preload("Tags").
		Order("created_at DESC").
		Limit(limit).Offset(page * limit).
		Find(&posts).Error; err != nil {
		a.l.Error("failed to get post list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Post{}).Count(&postsCount).Error; err != nil {
		a.l.Error("failed to count post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resPosts := []types.PostInfo{}
	for i := range posts {
		// 列表里不带正文
		resPosts = append(resPosts, *postInfo(&posts[i], false))
	}

	return a.ok(c, &types.PostListResponse{
		List:  resPosts,
		Count: postsCount,
	})
}

func (a *App) PostGet(c echo.Context) error {
	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的文章
	var post models.Post
	if err := a.db.WithContext(rctx).
		Preload("Author").Preload("Category").Preload("Tags").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint64("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 浏览量加一
	if err := a.db.WithContext(rctx).Model(&post).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		a.l.Error("failed to update view count", zap.Uint64("id", id), zap.Error(err))
	}

	return a.ok(c, postInfo(&post, true))
}

func (a *App) PostUpdate(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot, constants.RoleAuthor)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.PostInput
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的文章
	var post models.Post
	if err := a.db.WithContext(rctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint64("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	a.postMapFields(&req, &post)
	a.postSetStatus(&post, req.Status)

	// 更新标签关联
	if req.TagIDs != nil {
		tags, err := a.postResolveTags(rctx, *req.TagIDs)
		if err != nil {
			a.l.Error("failed to find tags", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if err := a.db.WithContext(rctx).Model(&post).Association("Tags").Replace(tags); err != nil {
			a.l.Error("failed to update tags", zap.Uint64("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 更新文章，关联关系在上面单独处理过了
	if err := a.db.WithContext(rctx).Omit(clause.Associations).Save(&post).Error; err != nil {
		a.l.Error("failed to update post", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 文章变动了，归档缓存作废
	a.invalidateArchiveCache(rctx)

	return a.ok(c, post.ID)
}

func (a *App) PostDelete(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, constants.RoleRoot, constants.RoleAuthor)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 确认文章存在
	var post models.Post
	if err := a.db.WithContext(rctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint64("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 删除文章
	if err := a.db.WithContext(rctx).Delete(&post).Error; err != nil {
		a.l.Error("failed to delete post", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 文章变动了，归档缓存作废
	a.invalidateArchiveCache(rctx)

	return a.ok(c, nil)
}

// PostArchives 按月份归档已发布的文章，返回每个月的文章数。
// 结果进 redis 缓存，文章有变动时作废
func (a *App) PostArchives(c echo.Context) error {
	rctx := c.Request().Context()

	// 查询缓存
	if cacheBytes, err := a.rdb.Get(rctx, constants.CacheKeyPostArchives).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query cache for archives", zap.Error(err))
		}
	} else {
		var items []types.ArchiveItem
		if err = json.Unmarshal(cacheBytes, &items); err != nil {
			a.l.Error("failed to unmarshal archives", zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
			// 可能是无效的缓存，清理掉
			a.rdb.Del(rctx, constants.CacheKeyPostArchives)
		} else {
			return a.ok(c, items)
		}
	}

	// 查询数据库
	items, err := a.queryArchives(rctx)
	if err != nil {
		a.l.Error("failed to query archives", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 格式化并加入缓存，方便下一次查询
	if cacheBytes, err := json.Marshal(items); err != nil {
		a.l.Error("failed to marshal archives", zap.Error(err))
	} else {
		a.rdb.Set(rctx, constants.CacheKeyPostArchives, cacheBytes, constants.CacheExpirePostArchives)
	}

	return a.ok(c, items)
}

// queryArchives 取出已发布文章的发布时间，在应用侧按月份分桶
func (a *App) queryArchives(ctx context.Context) ([]types.ArchiveItem, error) {
	var publishTimes []time.Time
	if err := a.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ? AND publish_time IS NOT NULL", constants.PostStatusPublish).
		Order("publish_time DESC").
		Pluck("publish_time", &publishTimes).Error; err != nil {
		return nil, err
	}

	items := []types.ArchiveItem{}
	for _, pt := range publishTimes {
		month := pt.Format(constants.ArchiveTimeLayout)
		if len(items) > 0 && items[len(items)-1].Time == month {
			items[len(items)-1].Count++
		} else {
			items = append(items, types.ArchiveItem{Time: month, Count: 1})
		}
	}

	return items, nil
}

// PostArchiveList 某个月份下的已发布文章列表
func (a *App) PostArchiveList(c echo.Context) error {
	rctx := c.Request().Context()

	month := c.QueryParam("time")
	if month == "" {
		return a.er(c, http.StatusBadRequest)
	}

	var posts []models.Post
	if err := a.db.WithContext(rctx).
		Preload("Category").Preload("Tags").
		Where("status = ?", constants.PostStatusPublish).
		Order("publish_time DESC").
		Find(&posts).Error; err != nil {
		a.l.Error("failed to get archive list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resPosts := []types.PostInfo{}
	for i := range posts {
		if posts[i].PublishTime != nil && posts[i].PublishTime.Format(constants.ArchiveTimeLayout) == month {
			resPosts = append(resPosts, *postInfo(&posts[i], false))
		}
	}

	return a.ok(c, resPosts)
}

func (a *App) invalidateArchiveCache(ctx context.Context) {
	if err := a.rdb.Del(ctx, constants.CacheKeyPostArchives).Err(); err != nil {
		a.l.Error("failed to invalidate archive cache", zap.Error(err))
	}
}
