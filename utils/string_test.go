package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsDangerousChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"纯文本", "Maple Leaf Observation", false},
		{"中文文本", "校园植物观测", false},
		{"空串", "", false},
		{"HTML标签", "<script>alert(1)</script>", true},
		{"自闭合标签", "<img src=x>", true},
		{"javascript协议", "javascript:alert(1)", true},
		{"大写协议", "JAVASCRIPT:alert(1)", true},
		{"data协议", "data:text/html;base64,xxx", true},
		{"事件处理器", "x onerror=alert(1)", true},
		{"实体编码绕过", "&lt;script&gt;alert(1)&lt;/script&gt;", true},
		{"普通标点", "Trees & shrubs (zone 3) - notes", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsDangerousChars(tt.input))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "alert(1)", SanitizeInput("<script>alert(1)</script>"))
	assert.Equal(t, "alert(1)", SanitizeInput("javascript:alert(1)"))
	assert.NotContains(t, SanitizeInput(`<div onclick="steal()">text</div>`), "onclick")
	assert.Equal(t, "校园植物观测", SanitizeInput("校园植物观测"))
}
