package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// 映射前：第几页，每页限制多少个
// 映射后：页减一，限制不变
func (a *App) parsePagination(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("pageNum"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.QueryParam("pageSize"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	return page - 1, limit
}

func (a *App) calcMaxPage(count int64, limit int) int64 {
	pageMax := count / int64(limit)
	if (count % int64(limit)) != 0 {
		pageMax++
	}
	return pageMax
}
