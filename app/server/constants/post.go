package constants

// 文章状态
const (
	PostStatusDraft   = "draft"
	PostStatusPublish = "publish"
)

// 归档分组使用的月份格式，例如 2023年06
const ArchiveTimeLayout = "2006年01"
