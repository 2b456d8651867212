package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/fenjian-next/internal/http/handlers/shared"
	"github.com/fenjian-next/internal/http/response"
	"github.com/fenjian-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// ListOperators 操作员列表
func (h *Handler) ListOperators(c *gin.Context) {
	operators, err := h.OperatorService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "查询失败", err)
		return
	}
	response.Success(c, operators)
}

// CreateOperatorRequest 创建操作员请求
type CreateOperatorRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	IsAdmin     bool   `json:"is_admin"`
}

// CreateOperator 创建操作员
func (h *Handler) CreateOperator(c *gin.Context) {
	creator, ok := handlershared.GetContextString(c, "username")
	if !ok {
		return
	}

	var req CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	operator, err := h.OperatorService.Create(req.Username, req.Password, req.DisplayName, req.IsAdmin, creator)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOperatorExists),
			errors.Is(err, service.ErrInvalidOperator),
			errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "创建操作员失败", err)
		}
		return
	}
	response.Success(c, operator)
}

// SetOperatorActiveRequest 启停请求
type SetOperatorActiveRequest struct {
	Active bool `json:"active"`
}

// SetOperatorActive 启用 / 停用操作员
func (h *Handler) SetOperatorActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "无效的操作员 ID", nil)
		return
	}

	var req SetOperatorActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.OperatorService.SetActive(uint(id), req.Active); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "操作员不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "更新失败", err)
		return
	}
	response.SuccessWithMsg(c, "已更新", nil)
}

// ResetOperatorPasswordRequest 重置密码请求
type ResetOperatorPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetOperatorPassword 重置操作员密码
func (h *Handler) ResetOperatorPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "无效的操作员 ID", nil)
		return
	}

	var req ResetOperatorPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.OperatorService.ResetPassword(uint(id), req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "操作员不存在", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "重置密码失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "密码已重置", nil)
}
