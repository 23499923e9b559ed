package teacher

import (
	"database/sql"
	"errors"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/security"
	"github.com/mjescario/csafk-backend/utils"
)

// 防时序攻击用的假哈希,用户名不存在时也要跑一次校验
const fakeHashForTiming = "$argon2id$v=19$m=65536,t=1,p=4$ZmFrZVNhbHRGb3JUaW1pbmc$ZmFrZUhhc2hGb3JUaW1pbmc"

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func isValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// 统一设置认证Cookie(支持Domain/SameSite,区分dev/prod)
func setAuthCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	secure := os.Getenv("ENV") == "production"
	domain := os.Getenv("COOKIE_DOMAIN")

	// SameSite 策略:生产用 None;开发用 Lax
	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}

	c.SetCookie("access_token", token, maxAge, "/", domain, secure, true)
}

func clearAuthCookie(c *gin.Context) {
	secure := os.Getenv("ENV") == "production"
	domain := os.Getenv("COOKIE_DOMAIN")
	c.SetCookie("access_token", "", -1, "/", domain, secure, true)
}

func RegisterHandler(c *gin.Context) {
	db := config.DB

	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request", "username and password are required.")
		return
	}

	if !isValidUsername(req.Username) {
		utils.SendError(c, http.StatusBadRequest, "Invalid username",
			"Username must be 3-20 characters of letters, digits or underscores.")
		return
	}
	if len(req.Password) < 8 {
		utils.SendError(c, http.StatusBadRequest, "Invalid password",
			"Password must be at least 8 characters.")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		utils.InternalError(c, "Password hashing failed", err)
		return
	}

	result, err := db.Exec("INSERT INTO teachers (username, password_hash) VALUES (?, ?)",
		req.Username, hash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			utils.SendError(c, http.StatusBadRequest, "Username taken",
				"A teacher with this username already exists.")
			return
		}
		utils.InternalError(c, "Database error", err)
		return
	}
	teacherID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, model.APIResponse{
		Success: true,
		Data:    gin.H{"teacher_id": int(teacherID), "username": req.Username},
		Message: "Teacher registered successfully!",
	})
}

func LoginHandler(c *gin.Context) {
	db := config.DB

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request", "username and password are required.")
		return
	}

	var teacherID int
	var passwordHash string
	err := db.QueryRow("SELECT teacher_id, password_hash FROM teachers WHERE username = ?",
		req.Username).Scan(&teacherID, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 防止时序攻击
			security.VerifyPassword(req.Password, fakeHashForTiming)
			utils.SendError(c, http.StatusUnauthorized, "Authentication failed",
				"Invalid username or password.")
			return
		}
		utils.InternalError(c, "Database error", err)
		return
	}

	valid, err := security.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		utils.SendError(c, http.StatusUnauthorized, "Authentication failed",
			"Invalid username or password.")
		return
	}

	token, expires, err := security.IssueToken(teacherID)
	if err != nil {
		utils.InternalError(c, "Token generation failed", err)
		return
	}
	setAuthCookie(c, token, expires)

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Data: gin.H{
			"teacher_id":   teacherID,
			"username":     req.Username,
			"access_token": token,
		},
		Message: "Login successful!",
	})
}

func LogoutHandler(c *gin.Context) {
	tokenString := c.GetString("session_token")
	if tokenString == "" {
		utils.SendError(c, http.StatusBadRequest, "Missing token", "No active session.")
		return
	}

	// 黑名单TTL对齐令牌剩余有效期
	ttl := security.TokenLifetime
	if _, claims, err := security.ParseToken(tokenString); err == nil && claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}

	if err := config.AddToBlacklist(tokenString, ttl); err != nil {
		utils.InternalError(c, "Failed to revoke token", err)
		return
	}
	clearAuthCookie(c)

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Logged out successfully.",
	})
}
