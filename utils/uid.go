package utils

import (
	mrand "math/rand"
	"time"
)

var codeRand = mrand.New(mrand.NewSource(time.Now().UnixNano()))

// GenerateProjectCode 生成学生端使用的公开项目码
// 大写字母 + 数字，唯一性由调用方对库查重保证
func GenerateProjectCode(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[codeRand.Intn(len(charset))]
	}
	return string(b)
}
