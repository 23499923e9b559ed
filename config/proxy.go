package config

import (
	"os"
	"strings"
)

// LoadTrustedProxies 加载可信代理列表，逗号分隔
func LoadTrustedProxies() []string {
	proxiesEnv := os.Getenv("TRUSTED_PROXIES")
	if proxiesEnv == "" {
		// 默认只信任本地回环地址
		return []string{"127.0.0.1"}
	}
	return strings.Split(proxiesEnv, ",")
}
