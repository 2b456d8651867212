package station

import "github.com/fenjian-next/internal/provider"

// Handler 扫描站接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建扫描站处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
