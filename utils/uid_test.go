package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProjectCodeLength(t *testing.T) {
	for _, length := range []int{1, 8, 16} {
		code := GenerateProjectCode(length)
		assert.Len(t, code, length)
	}
}

func TestGenerateProjectCodeCharset(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateProjectCode(8)
		for _, ch := range code {
			isUpper := ch >= 'A' && ch <= 'Z'
			isDigit := ch >= '0' && ch <= '9'
			assert.True(t, isUpper || isDigit, "unexpected character %q in code %s", ch, code)
		}
	}
}

func TestGenerateProjectCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateProjectCode(8)] = true
	}
	// 50次生成撞出同一个码的概率可以忽略
	assert.Greater(t, len(seen), 1)
}
