package shared

import (
	"github.com/fenjian-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextString 从上下文读取非空字符串并统一处理错误响应。
func GetContextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未登录", nil)
		return "", false
	}
	text, ok := value.(string)
	if !ok || text == "" {
		RespondError(c, response.CodeInternal, "登录态异常", nil)
		return "", false
	}
	return text, true
}

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未登录", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "登录态异常", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "登录态异常", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "登录态异常", nil)
		return 0, false
	}
}
