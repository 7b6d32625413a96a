package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvforge/internal/ai"
	"cvforge/internal/api/middleware"
	"cvforge/internal/auth"
	"cvforge/internal/config"
	"cvforge/internal/storage"
)

// RegisterRoutes 注册全部 /v1 路由。
// 除 /auth/* 与 /ws 外的业务路由都要求访问令牌，并由改密闸门拦截待改密账号。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	cfg *config.Config,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger,
		cfg.API.LoginRateLimitPerHour, cfg.API.LoginLockThreshold, cfg.API.LoginLockTTL(), cfg.API.CookieDomain)
	projectHandler := NewProjectHandler(db, storageClient)
	cvHandler := NewCVHandler(db, asynqClient, ai.NewStaticSuggester())
	coverLetterHandler := NewCoverLetterHandler(db)
	templateHandler := NewTemplateHandler(db, asynqClient)
	assetHandler := NewAssetHandler(db, storageClient, redisClient, logger, cfg.Upload)
	wsHandler := NewWsHandler(redisClient, authService, logger, cfg.API.AllowedOrigins)

	authMiddleware := middleware.AuthMiddleware(authService)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()
	internalOnly := middleware.InternalSecretMiddleware(cfg.API.InternalSecret)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		projectGroup := v1.Group("/projects")
		projectGroup.Use(authMiddleware, passwordGate)
		{
			projectGroup.GET("", projectHandler.ListProjects)
			projectGroup.POST("", projectHandler.CreateProject)
			projectGroup.GET("/:id", projectHandler.GetProject)
			projectGroup.PATCH("/:id", projectHandler.UpdateProject)
			projectGroup.DELETE("/:id", projectHandler.DeleteProject)

			projectGroup.GET("/:id/cv", cvHandler.GetProjectCV)
			projectGroup.PUT("/:id/cv", cvHandler.UpsertProjectCV)
			projectGroup.GET("/:id/cv/preview", cvHandler.PreviewProjectCV)
			projectGroup.POST("/:id/cv/snapshot", cvHandler.SnapshotProjectCV)
			projectGroup.GET("/:id/cv/suggestions", cvHandler.GetSuggestions)
			projectGroup.POST("/:id/cv/apply-suggestion", cvHandler.ApplySuggestion)

			projectGroup.GET("/:id/cover-letters", coverLetterHandler.ListCoverLetters)
			projectGroup.POST("/:id/cover-letters", coverLetterHandler.CreateCoverLetter)
		}

		cvGroup := v1.Group("/cv")
		cvGroup.Use(authMiddleware, passwordGate)
		{
			cvGroup.DELETE("/:id", cvHandler.DeleteCV)
		}

		letterGroup := v1.Group("/cover-letters")
		letterGroup.Use(authMiddleware, passwordGate)
		{
			letterGroup.GET("/:id", coverLetterHandler.GetCoverLetter)
			letterGroup.PATCH("/:id", coverLetterHandler.UpdateCoverLetter)
			letterGroup.DELETE("/:id", coverLetterHandler.DeleteCoverLetter)
		}

		templateGroup := v1.Group("/templates")
		templateGroup.Use(authMiddleware, passwordGate)
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
		}

		internalGroup := v1.Group("/internal")
		internalGroup.Use(internalOnly)
		{
			internalGroup.POST("/templates", templateHandler.CreateTemplate)
			internalGroup.PUT("/templates/:id", templateHandler.UpdateTemplate)
			internalGroup.DELETE("/templates/:id", templateHandler.DeleteTemplate)
		}

		assetGroup := v1.Group("/assets")
		assetGroup.Use(authMiddleware, passwordGate)
		{
			assetGroup.POST("/upload", assetHandler.UploadAsset)
			assetGroup.GET("", assetHandler.ListAssets)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
			assetGroup.DELETE("", assetHandler.DeleteAsset)
		}
	}
}
