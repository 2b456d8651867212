package service

import (
	"strings"

	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/repository"
)

// OperatorService 操作员管理（管理员侧）
type OperatorService struct {
	operatorRepo repository.OperatorRepository
	auth         *AuthService
}

// NewOperatorService 创建操作员管理服务
func NewOperatorService(operatorRepo repository.OperatorRepository, auth *AuthService) *OperatorService {
	return &OperatorService{
		operatorRepo: operatorRepo,
		auth:         auth,
	}
}

// List 列出全部操作员
func (s *OperatorService) List() ([]models.Operator, error) {
	return s.operatorRepo.List()
}

// Create 创建操作员账号，createdBy 记录创建人登录名
func (s *OperatorService) Create(username, password, displayName string, isAdmin bool, createdBy string) (*models.Operator, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	createdBy = strings.TrimSpace(createdBy)
	if username == "" || displayName == "" {
		return nil, ErrInvalidOperator
	}
	if err := s.auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOperatorExists
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	operator := &models.Operator{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		IsAdmin:      isAdmin,
		IsActive:     true,
		CreatedBy:    createdBy,
	}
	if err := s.operatorRepo.Create(operator); err != nil {
		return nil, err
	}
	logger.Infow("operator_created", "username", username, "is_admin", isAdmin)
	return operator, nil
}

// SetActive 启用 / 停用操作员
func (s *OperatorService) SetActive(id uint, active bool) error {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrNotFound
	}
	operator.IsActive = active
	if err := s.operatorRepo.Update(operator); err != nil {
		return err
	}
	logger.Infow("operator_active_changed", "username", operator.Username, "active", active)
	return nil
}

// ResetPassword 管理员重置操作员密码
func (s *OperatorService) ResetPassword(id uint, newPassword string) error {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrNotFound
	}
	if err := s.auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	operator.PasswordHash = hash
	if err := s.operatorRepo.Update(operator); err != nil {
		return err
	}
	logger.Infow("operator_password_reset", "username", operator.Username)
	return nil
}
