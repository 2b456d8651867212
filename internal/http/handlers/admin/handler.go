package admin

import "github.com/fenjian-next/internal/provider"

// Handler 管理端接口处理器入口
// 说明：该处理器仅用于操作员管理 API，需要管理员身份。
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
