package models

import "time"

// Operator 扫描操作员账号
type Operator struct {
	ID           uint       `gorm:"primarykey" json:"id"`                              // 主键
	Username     string     `gorm:"type:varchar(60);uniqueIndex;not null" json:"username"` // 登录名
	PasswordHash string     `gorm:"type:varchar(120);not null" json:"-"`               // bcrypt 哈希
	DisplayName  string     `gorm:"type:varchar(60)" json:"display_name"`              // 显示名
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`                     // 是否管理员
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`               // 是否启用
	LastLoginAt  *time.Time `json:"last_login_at"`                                     // 最近登录时间
	CreatedBy    string     `gorm:"type:varchar(60)" json:"created_by"`                // 创建人
	CreatedAt    time.Time  `json:"created_at"`                                        // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
