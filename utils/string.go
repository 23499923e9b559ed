package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var eventHandlers = []string{
	"onload", "onerror", "onclick", "onmouseover", "onmouseout",
	"onkeydown", "onkeyup", "onkeypress", "onsubmit", "onchange",
	"onfocus", "onblur",
}

var dangerousProtocols = []string{
	"javascript:", "data:", "vbscript:", "file:", "about:", "blob:",
}

// 检查字符串是否包含危险字符（HTML 标签、脚本协议、事件处理器）
func ContainsDangerousChars(s string) bool {
	if htmlTagRegex.MatchString(s) {
		return true
	}

	lower := strings.ToLower(s)
	for _, protocol := range dangerousProtocols {
		if strings.Contains(lower, protocol) {
			return true
		}
	}

	// HTML 解码后再查一遍，防实体编码绕过
	decoded := strings.ToLower(html.UnescapeString(s))
	if decoded != lower {
		if htmlTagRegex.MatchString(decoded) {
			return true
		}
		for _, protocol := range dangerousProtocols {
			if strings.Contains(decoded, protocol) {
				return true
			}
		}
	}

	for _, handler := range eventHandlers {
		if strings.Contains(lower, handler) {
			return true
		}
	}

	return false
}

// 安全过滤函数：去掉标签、事件处理器和危险协议
func SanitizeInput(input string) string {
	decoded := html.UnescapeString(input)

	cleaned := htmlTagRegex.ReplaceAllString(decoded, "")

	for _, handler := range eventHandlers {
		pattern := fmt.Sprintf(`(?i)%s\s*=\s*["'][^"']*["']`, handler)
		cleaned = regexp.MustCompile(pattern).ReplaceAllString(cleaned, "")
	}

	for _, protocol := range dangerousProtocols {
		cleaned = strings.ReplaceAll(cleaned, protocol, "")
		cleaned = strings.ReplaceAll(cleaned, strings.ToUpper(protocol), "")
	}

	return strings.TrimSpace(cleaned)
}
