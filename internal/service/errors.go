package service

import "errors"

// 服务层哨兵错误
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrOperatorDisabled   = errors.New("账号已停用")
	ErrOperatorExists     = errors.New("登录名已存在")
	ErrInvalidOperator    = errors.New("操作员信息不完整")
	ErrWeakPassword       = errors.New("密码长度至少 6 位")
	ErrEmptyImport        = errors.New("导入数据为空")
	ErrRemoteSync         = errors.New("云端同步失败，数据已保存在本地")
)
