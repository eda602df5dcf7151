package router

import (
	"time"

	"admoa/config"
	"admoa/internal/handler"
	"admoa/internal/middleware"
	"admoa/internal/repository"
	"admoa/internal/service"
	"admoa/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	clientRepo := repository.NewClientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	pointRepo := repository.NewPointRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, clientRepo)
	clientSvc := service.NewClientService(db, clientRepo)
	orderSvc := service.NewOrderService(db, clientRepo, orderRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, clientRepo, auditRepo)
	orderHandler := handler.NewOrderHandler(orderSvc, orderRepo, settingRepo, auditRepo)
	clientHandler := handler.NewClientHandler(clientSvc, clientRepo, pointRepo, auditRepo)
	adminHandler := handler.NewAdminHandler(adminRepo, settingRepo, auditRepo, authSvc)
	uploadHandler := handler.NewUploadHandler(cloud)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.PATCH("/change-password", middleware.AuthRequired(&cfg.JWT), authHandler.ChangePassword)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))
	{
		authed.GET("/me", authHandler.Me)

		orders := authed.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.POST("", middleware.ContractActive(clientRepo), orderHandler.Create)
			orders.GET("/:id", orderHandler.Get)
			orders.PATCH("/:id", orderHandler.Patch)
			orders.DELETE("/:id", orderHandler.Delete)
		}

		authed.POST("/uploads/order-image", uploadHandler.UploadOrderImage)
	}

	admin := v1.Group("/admin")
	admin.POST("/login", adminHandler.AdminLogin)
	admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		clients := admin.Group("/clients")
		{
			clients.GET("", clientHandler.List)
			clients.POST("", clientHandler.Create)
			clients.GET("/:id", clientHandler.Get)
			clients.PATCH("/:id", clientHandler.Update)
			clients.DELETE("/:id", clientHandler.Delete)
			clients.POST("/:id/renew", clientHandler.Renew)
			clients.POST("/:id/points", clientHandler.AdjustPoints)
		}

		admin.GET("/settings", adminHandler.ListSettings)
		admin.PUT("/settings/:key", adminHandler.PutSetting)
		admin.GET("/audit-logs", adminHandler.ListAuditLogs)
	}

	return r
}
