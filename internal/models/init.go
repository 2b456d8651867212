package models

import (
	"strings"

	"github.com/fenjian-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultOperator 首次启动时创建默认管理员账号
func InitDefaultOperator(username, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		DisplayName:  "管理员",
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_operator_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_operator_password_change_required", "username", username)
	} else {
		logger.Warnw("default_operator_created", "username", username, "password_hidden", true)
	}
	return nil
}
