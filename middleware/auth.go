package middleware

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/security"
	"github.com/mjescario/csafk-backend/utils"

	"github.com/gin-gonic/gin"
)

// extractToken 优先取 access_token Cookie，其次 Authorization: Bearer
func extractToken(c *gin.Context) string {
	if cookieToken, err := c.Cookie("access_token"); err == nil && cookieToken != "" {
		return cookieToken
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthMiddleware 教师会话认证
// 校验令牌、查黑名单、确认教师仍然存在，然后把身份放进 context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.SendError(c, http.StatusUnauthorized, "Authentication required", "No session credential provided.")
			return
		}

		if config.IsBlacklisted(tokenString) {
			utils.SendError(c, http.StatusUnauthorized, "Authentication required", "Session has been revoked.")
			return
		}

		teacherID, _, err := security.ParseToken(tokenString)
		if err != nil {
			utils.SendError(c, http.StatusUnauthorized, "Authentication required", "Invalid or expired session credential.")
			return
		}

		// 令牌有效但教师已被删除时同样拒绝
		var username string
		err = config.DB.QueryRow("SELECT username FROM teachers WHERE teacher_id = ?", teacherID).Scan(&username)
		if err != nil {
			if err == sql.ErrNoRows {
				log.Printf("拒绝访问: 令牌对应的教师 %d 不存在", teacherID)
				utils.SendError(c, http.StatusUnauthorized, "Authentication required", "Account no longer exists.")
				return
			}
			utils.InternalError(c, "Authentication lookup failed", err)
			return
		}

		c.Set("teacher_id", teacherID)
		c.Set("username", username)
		c.Set("session_token", tokenString)
		c.Next()
	}
}

func CorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Writer.Header().Add("Vary", "Origin")

		allowed := false
		allowedOrigins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin != "" && origin == strings.TrimSpace(allowedOrigin) {
				allowed = true
				break
			}
		}

		// 开发环境放宽：允许本机任意端口
		env := strings.ToLower(os.Getenv("ENV"))
		isDev := env == "" || env == "dev" || env == "development"
		if !allowed && isDev && (strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")) {
			allowed = true
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if os.Getenv("ENV") == "production" {
			c.Writer.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		c.Next()
	}
}
