package utils

import (
	"log"
	"net/http"
	"os"

	"github.com/mjescario/csafk-backend/model"

	"github.com/gin-gonic/gin"
)

// SendError 写入统一错误信封，message 命名具体缺失的资源或原因
func SendError(c *gin.Context, code int, errMsg, message string) {
	LogError(errMsg, nil)
	c.JSON(code, model.APIResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
	})
	c.Abort()
}

// InternalError 持久层等内部错误，原始错误文本直接进 message（契约如此，不做脱敏）
func InternalError(c *gin.Context, errMsg string, err error) {
	LogError(errMsg, err)
	message := ""
	if err != nil {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, model.APIResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
	})
	c.Abort()
}

// 错误日志记录函数
func LogError(context string, err error) {
	if err != nil {
		log.Printf("[ERROR] %s: %v", context, err)
	} else {
		log.Printf("[ERROR] %s", context)
	}

	if os.Getenv("ENV") == "production" {
		// TODO: 日志上报逻辑
	}
}
