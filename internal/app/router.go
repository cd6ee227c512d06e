package app

import (
	"learnpulse_backend/docs"
	"learnpulse_backend/internal/config"
	"learnpulse_backend/internal/middleware"
	"learnpulse_backend/internal/model"
	"learnpulse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// Assistant routes run in demo mode without a token; a valid token
	// attaches the requester for ticket attribution and class checks.
	assistant := router.Group("/api")
	assistant.Use(middleware.TryAuthMiddleware(cfg))
	{
		assistant.POST("/assistant/chat", c.chat.Chat)
		assistant.GET("/assistant/meta", c.chat.Meta)

		assistant.GET("/students/:name/summary", c.analytics.StudentSummary)
		assistant.GET("/students/:name/feedback", c.analytics.StudentFeedback)
		assistant.GET("/classes/:classId/summary", c.analytics.ClassSummary)

		assistant.GET("/reports/students/:name/html", c.reports.StudentReport)
		assistant.GET("/reports/classes/:classId/html", c.reports.ClassReport)
	}

	// Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.Profile)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/dataset/reload", c.admin.ReloadDataset)
	}
}
