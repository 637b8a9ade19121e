package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"filekeeper/config"
	"filekeeper/database"
	"filekeeper/handlers"
	"filekeeper/middleware"
	"filekeeper/services"
)

func main() {
	// 加载 .env（不存在时忽略）
	_ = godotenv.Load()

	cfg := config.GetConfig()

	// 初始化元数据数据库
	db, err := database.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 初始化对象存储
	storageCfg := config.LoadStorageConfig()
	if err := storageCfg.Validate(); err != nil {
		log.Fatalf("对象存储配置错误: %v", err)
	}
	objectStore, err := services.NewS3ObjectStore(storageCfg)
	if err != nil {
		log.Fatalf("初始化对象存储失败: %v", err)
	}

	// 初始化审计事件存储。审计不可用绝不阻塞核心功能，
	// 连接失败时降级为本地日志。
	var auditLogger services.AuditLogger = services.NoopAuditLogger{}
	chCfg := config.GetClickHouseConfig()
	if chCfg.Enabled {
		conn, chErr := database.InitClickHouse(chCfg)
		if chErr != nil {
			log.Printf("⚠️ 审计存储不可用，降级为本地日志: %v", chErr)
		} else {
			auditLogger = services.NewClickHouseAuditLogger(conn)
		}
	}

	metaStore := services.NewGormMetadataStore(db)
	lifecycleSvc := services.NewLifecycleService(
		objectStore,
		metaStore,
		auditLogger,
		time.Duration(cfg.URLExpirationSeconds)*time.Second,
	)

	// 启动过期文件清理调度器
	scheduler := services.NewCleanupScheduler(lifecycleSvc, cfg.CleanupSchedule)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("启动清理调度器失败: %v", err)
	}
	defer scheduler.Stop()

	// 创建 Gin 路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	authHandler := handlers.NewAuthHandler(db, []byte(cfg.JWTSecret))
	filesHandler := handlers.NewFilesHandler(lifecycleSvc)

	// 健康检查
	r.GET("/", handlers.Health)
	r.GET("/healthcheck", handlers.Health)

	// 公开路由
	public := r.Group("/api")
	{
		public.POST("/login", authHandler.Login)
		public.POST("/register", authHandler.Register)
	}

	// 文件接口，全部需要认证
	files := r.Group("/files")
	files.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret), cfg.APIToken))
	files.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	{
		files.POST("", filesHandler.Upload)
		files.GET("", filesHandler.List)
		files.GET("/signed-upload-url", filesHandler.UploadURL)
		files.GET("/expired", filesHandler.GetExpired)
		files.POST("/expired/remove", filesHandler.RemoveExpired)
		files.DELETE("/:name", filesHandler.Delete)
		files.GET("/:name/download-url", filesHandler.DownloadURL)
	}

	// 启动服务器
	port := cfg.ServerPort
	log.Printf("Server starting on port %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
