package models

import "time"

// ScanResult 单次扫描的不可变结果记录
type ScanResult struct {
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome"` // success / duplicate / error
	Message   string    `json:"message"`
	Package   *Package  `json:"package,omitempty"`
}

// DashboardStats 面板统计
type DashboardStats struct {
	Total    int `json:"total"`
	Scanned  int `json:"scanned"`
	Pending  int `json:"pending"`
	Progress int `json:"progress"` // 0-100
}
