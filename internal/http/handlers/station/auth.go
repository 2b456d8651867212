package station

import (
	"errors"
	"time"

	"github.com/fenjian-next/internal/http/response"
	"github.com/fenjian-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 操作员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	operator, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
		case errors.Is(err, service.ErrOperatorDisabled):
			respondError(c, response.CodeForbidden, "账号已停用", nil)
		default:
			respondError(c, response.CodeInternal, "登录失败", err)
		}
		return
	}

	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":           operator.ID,
			"username":     operator.Username,
			"display_name": operator.DisplayName,
			"is_admin":     operator.IsAdmin,
		},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// Profile 当前登录操作员信息
func (h *Handler) Profile(c *gin.Context) {
	id, ok := getOperatorID(c)
	if !ok {
		return
	}
	operator, err := h.OperatorRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "查询失败", err)
		return
	}
	if operator == nil {
		respondError(c, response.CodeNotFound, "账号不存在", nil)
		return
	}
	response.Success(c, operator)
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdatePassword 修改自己的密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	id, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "原密码错误", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "账号不存在", nil)
		default:
			respondError(c, response.CodeInternal, "修改密码失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "密码已更新", nil)
}
