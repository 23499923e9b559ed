package config

import (
	"context"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	_, err := RedisClient.Ping(ctx).Result()
	return err
}

// 登出后的令牌进黑名单，TTL 与令牌剩余有效期一致
func AddToBlacklist(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx := context.Background()
	return RedisClient.Set(ctx, "blacklist:"+token, "blacklisted", ttl).Err()
}

// 查询令牌是否已被拉黑；redis 不可用时放行，认证仍由 JWT 校验兜底
func IsBlacklisted(token string) bool {
	if RedisClient == nil {
		return false
	}
	ctx := context.Background()
	n, err := RedisClient.Exists(ctx, "blacklist:"+token).Result()
	if err != nil {
		return false
	}
	return n > 0
}
