package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/middleware"
	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/module/observation"
	"github.com/mjescario/csafk-backend/module/project"
	"github.com/mjescario/csafk-backend/module/project/field"
	"github.com/mjescario/csafk-backend/module/student"
	"github.com/mjescario/csafk-backend/module/teacher"
)

var db *sql.DB

func main() {

	gin.SetMode(gin.ReleaseMode)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// 使用config模块初始化数据库
	config.InitDB()
	db = config.DB
	defer db.Close()

	// 初始化 Redis 客户端(登出令牌黑名单)
	if err := config.InitRedis(); err != nil {
		log.Fatalf("无法连接到 Redis: %v", err)
	}

	// 启动孤儿数据定时清理任务
	startOrphanCleanupScheduler()

	// 主应用 Gin 路由器
	router := gin.New()

	// 设置可信代理
	trusted := config.LoadTrustedProxies()
	if err := router.SetTrustedProxies(trusted); err != nil {
		log.Fatalf("设置可信代理失败: %v", err)
	}

	router.Use(gin.Recovery())
	router.Use(
		middleware.CorsMiddleware(),
		middleware.RateLimitMiddleware(),
		middleware.SecurityHeadersMiddleware(),
	)

	// ===================================================================
	// 主应用 API 路由
	// ===================================================================
	router.GET("/api/status", statusHandler)

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", teacher.RegisterHandler)
		authGroup.POST("/login", teacher.LoginHandler)
		authGroup.POST("/logout", middleware.AuthMiddleware(), teacher.LogoutHandler)
	}

	// 学生侧公开路由:凭项目代码读取项目,匿名提交观测记录
	router.GET("/api/student/projects/:projectCode", student.GetProjectByCodeHandler)
	router.POST("/api/projects/:projectId/observations", observation.CreateObservationHandler)

	// 教师侧受保护路由
	protected := router.Group("/api", middleware.AuthMiddleware())
	{
		protected.POST("/projects", project.CreateProjectHandler)
		protected.GET("/projects/:projectId", project.GetProjectHandler)
		protected.PUT("/projects/:projectId", project.UpdateProjectHandler)
		protected.DELETE("/projects/:projectId", project.DeleteProjectHandler)
		protected.GET("/users/:teacherId/projects", project.ListTeacherProjectsHandler)

		protected.POST("/projects/:projectId/fields", field.CreateFieldHandler)
		protected.GET("/projects/:projectId/fields", field.ListFieldsHandler)
		protected.PUT("/projects/:projectId/fields/:fieldId", field.UpdateFieldHandler)
		protected.DELETE("/projects/:projectId/fields/:fieldId", field.DeleteFieldHandler)

		protected.GET("/projects/:projectId/observations", observation.ListObservationsHandler)
		protected.GET("/projects/:projectId/observations/:observationId", observation.GetObservationHandler)
		protected.PUT("/projects/:projectId/observations/:observationId", observation.UpdateObservationHandler)
		protected.DELETE("/projects/:projectId/observations/:observationId", observation.DeleteObservationHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	startHTTPServer(router, port)
}

// statusHandler 健康检查,独立于统一响应信封
func statusHandler(c *gin.Context) {
	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		c.JSON(http.StatusInternalServerError, model.StatusResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{
		Status:  "success",
		Message: "Connected to database successfully!",
	})
}

// startOrphanCleanupScheduler 启动孤儿数据定时清理任务
// 级联删除在应用层完成,定时扫描兜底中断事务留下的残留行
func startOrphanCleanupScheduler() {
	cronExpr := os.Getenv("ORPHAN_CLEANUP_CRON")
	if cronExpr == "" {
		cronExpr = "0 3 * * *" // 默认每天凌晨3点执行
	}

	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		count, err := cleanupOrphanRows()
		if err != nil {
			log.Printf("执行孤儿数据清理任务失败: %v", err)
		} else if count > 0 {
			log.Printf("孤儿数据清理任务完成，共删除 %d 条残留数据", count)
		}
	})
	if err != nil {
		log.Printf("启动孤儿数据清理计划任务失败: %v", err)
		return
	}

	c.Start()
	log.Printf("孤儿数据清理计划任务已启动，Cron表达式: %s", cronExpr)
}

func cleanupOrphanRows() (int64, error) {
	if db == nil {
		return 0, nil
	}

	var total int64

	res, err := db.Exec(`
		DELETE d FROM observation_data d
		LEFT JOIN observations o ON d.observation_id = o.observation_id
		WHERE o.observation_id IS NULL`)
	if err != nil {
		return total, err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		total += rows
	}

	res, err = db.Exec(`
		DELETE o FROM observations o
		LEFT JOIN projects p ON o.project_id = p.project_id
		WHERE p.project_id IS NULL`)
	if err != nil {
		return total, err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		total += rows
	}

	res, err = db.Exec(`
		DELETE f FROM fields f
		LEFT JOIN projects p ON f.project_id = p.project_id
		WHERE p.project_id IS NULL`)
	if err != nil {
		return total, err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		total += rows
	}

	return total, nil
}

// startHTTPServer 启动HTTP服务器
func startHTTPServer(router *gin.Engine, port string) {
	log.Printf("启动HTTP服务器，端口: %s", port)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器启动失败: %v", err)
		}
	}()

	gracefulShutdown(server)
}

// gracefulShutdown 优雅关闭服务器
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	log.Println("服务器已关闭")
}
