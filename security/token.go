package security

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime 会话令牌有效期
const TokenLifetime = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}
	return []byte(secret), nil
}

// IssueToken 为教师签发会话令牌，Subject 为 teacher_id，JTI 随机
func IssueToken(teacherID int) (string, time.Time, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	expires := time.Now().Add(TokenLifetime)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(teacherID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken 解析并校验令牌，返回 teacher_id 与声明
func ParseToken(tokenString string) (int, *jwt.RegisteredClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return 0, nil, err
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return 0, nil, ErrInvalidToken
	}

	teacherID, err := strconv.Atoi(claims.Subject)
	if err != nil || teacherID <= 0 {
		return 0, nil, ErrInvalidToken
	}
	return teacherID, claims, nil
}
