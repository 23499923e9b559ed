package model

import (
	"time"

	"golang.org/x/time/rate"
)

// APIResponse 统一响应信封：成功带 data，失败带 error + message
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StatusResponse /api/status 专用的响应结构（与业务信封不同）
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type IpLimiter struct {
	Limiter    *rate.Limiter
	LastActive time.Time
}
