package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id 参数
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// HashPassword 使用 Argon2id 哈希密码
// 格式: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %v", err)
	}

	combined := password + string(salt) + GetPepper()
	hash := argon2.IDKey([]byte(combined), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads, saltB64, hashB64), nil
}

// VerifyPassword 验证密码，constant time 比较防时序攻击
func VerifyPassword(password, encodedHash string) (bool, error) {
	memory, time, threads, salt, hash, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false, err
	}

	combined := password + string(salt) + GetPepper()
	otherHash := argon2.IDKey([]byte(combined), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, otherHash) == 1, nil
}

func parseEncodedHash(encodedHash string) (memory, time uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported hash algorithm: %s", parts[1])
	}
	if parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version: %s", parts[2])
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("parse hash params: %v", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("decode salt: %v", err)
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("decode hash: %v", err)
	}
	return memory, time, threads, salt, hash, nil
}

// GetPepper 从环境变量获取 pepper，未配置时返回空串（仅加盐）
func GetPepper() string {
	return os.Getenv("PASSWORD_PEPPER")
}
