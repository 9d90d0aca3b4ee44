package handlers

import "github.com/labstack/echo/v4"

// RegisterRoutes 注册全部路由。
// 每个操作的角色要求都写在对应 handler 开头的 authUser 调用里，
// 没有调用 authUser 的接口对任何人开放（包括匿名）
func RegisterRoutes(e *echo.Echo, a *App) {
	api := e.Group("/api")

	// 验证
	api.POST("/auth/login", a.AuthLogin)
	api.GET("/auth/wechatLogin", a.AuthWechatRedirect)
	api.POST("/auth/wechat", a.AuthWechatLogin)

	// 用户
	api.POST("/user/register", a.UserRegister)
	api.GET("/user/profile", a.UserProfile)     // 需要登录
	api.GET("/user", a.UserList)                // root
	api.PUT("/user/:id/role", a.UserRoleUpdate) // root
	api.DELETE("/user/:id", a.UserDelete)       // root

	// 文章
	api.POST("/posts", a.PostCreate) // root / author
	api.GET("/posts", a.PostList)
	api.GET("/posts/archives", a.PostArchives)
	api.GET("/posts/archives/list", a.PostArchiveList)
	api.GET("/posts/:id", a.PostGet)
	api.PUT("/posts/:id", a.PostUpdate)    // root / author
	api.DELETE("/posts/:id", a.PostDelete) // root / author

	// 分类
	api.POST("/category", a.CategoryCreate) // root / author
	api.GET("/category", a.CategoryList)
	api.DELETE("/category/:id", a.CategoryDelete) // root

	// 标签
	api.POST("/tag", a.TagCreate) // root / author
	api.GET("/tag", a.TagList)
	api.DELETE("/tag/:id", a.TagDelete) // root
}
