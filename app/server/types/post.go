package types

import "time"

type PostInput struct {
	Title       *string   `json:"title"`
	Summary     *string   `json:"summary"`
	Content     *string   `json:"content"`
	CoverURL    *string   `json:"coverUrl"`
	Keywords    *[]string `json:"keywords"`
	Status      *string   `json:"status"`
	IsRecommend *bool     `json:"isRecommend"`
	CategoryID  *uint     `json:"category"`
	TagIDs      *[]uint   `json:"tag"`
}

type PostInfo struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty"`
	CoverURL    string     `json:"coverUrl"`
	Keywords    []string   `json:"keywords"`
	Status      string     `json:"status"`
	IsRecommend bool       `json:"isRecommend"`
	ViewCount   int64      `json:"count"`
	PublishTime *time.Time `json:"publishTime"`
	Author      *UserInfo  `json:"author,omitempty"`
	Category    *NameInfo  `json:"category,omitempty"`
	Tags        []NameInfo `json:"tags"`
	CreatedAt   time.Time  `json:"createTime"`
	UpdatedAt   time.Time  `json:"updateTime"`
}

type PostListResponse struct {
	List  []PostInfo `json:"list"`
	Count int64      `json:"count"`
}

// ArchiveItem 某个月份下发布文章的数量
type ArchiveItem struct {
	Time  string `json:"time"`
	Count int64  `json:"count"`
}
