package constants

// 用户角色：root 可以管理一切， author 可以管理文章相关内容， visitor 只能浏览
const (
	RoleRoot    = "root"
	RoleAuthor  = "author"
	RoleVisitor = "visitor"
)
