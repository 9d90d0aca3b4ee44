package types

// NameRequest 分类和标签的创建都只需要一个名字
type NameRequest struct {
	Name string `json:"name"`
}

type NameInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
