package constants

import "time"

const (
	CacheKeyPostArchives = "blog:post:archives"
	CacheKeyCategoryList = "blog:category:list"
)

const (
	CacheExpirePostArchives = 12 * time.Hour
	CacheExpireCategoryList = 1 * time.Hour
)
