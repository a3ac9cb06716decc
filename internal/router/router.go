// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/config"
	"github.com/craftkala/craftkala-backend/internal/handlers"
	"github.com/craftkala/craftkala-backend/internal/middleware"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
)

// Setup wires stores, services and handlers onto a gin engine.
func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Stores
	appStore := store.NewGormApplicationStore(db)
	profileStore := store.NewGormProfileStore(db)

	// Services
	storageService := services.NewStorageService(cfg.AWS)
	notificationService := services.NewNotificationService(db, cfg.Email)
	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(db, cfg.JWT)
	applicationService := services.NewApplicationService(appStore, storageService, notificationService)
	decisionService := services.NewDecisionService(appStore, profileStore, notificationService, auditService)
	artisanService := services.NewArtisanService(profileStore)
	productService := services.NewProductService(db, profileStore)
	adminService := services.NewAdminService(db, appStore, auditService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	adminHandler := handlers.NewAdminHandler(adminService, decisionService, auditService)
	artisanHandler := handlers.NewArtisanHandler(artisanService)
	productHandler := handlers.NewProductHandler(productService)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.Language())
	r.Use(middleware.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.StrictRateLimit(), authHandler.Register)
			auth.POST("/login", middleware.StrictRateLimit(), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		applications := v1.Group("/applications", middleware.AuthRequired())
		{
			applications.POST("", middleware.StrictRateLimit(), applicationHandler.Submit)
			applications.POST("/documents", middleware.StrictRateLimit(), applicationHandler.UploadDocuments)
			applications.GET("/mine", applicationHandler.ListMine)
			applications.GET("/:id", applicationHandler.Get)
			applications.PUT("/:id/resubmit", applicationHandler.Resubmit)
		}

		artisans := v1.Group("/artisans")
		{
			artisans.GET("", artisanHandler.List)
			artisans.GET("/me", middleware.AuthRequired(), middleware.ArtisanRequired(), artisanHandler.GetOwn)
			artisans.PUT("/me", middleware.AuthRequired(), middleware.ArtisanRequired(), artisanHandler.UpdateOwn)
			artisans.GET("/:id", artisanHandler.Get)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/mine", middleware.AuthRequired(), middleware.ArtisanRequired(), productHandler.ListOwn)
			products.GET("/:id", productHandler.Get)
			products.POST("", middleware.AuthRequired(), middleware.ArtisanRequired(), productHandler.Create)
			products.PUT("/:id", middleware.AuthRequired(), middleware.ArtisanRequired(), productHandler.Update)
			products.DELETE("/:id", middleware.AuthRequired(), middleware.ArtisanRequired(), productHandler.Delete)
		}

		admin := v1.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetStats)
			admin.GET("/applications", adminHandler.ListApplications)
			admin.GET("/applications/:id", adminHandler.GetApplication)
			admin.PUT("/applications/:id/approve", adminHandler.ApproveApplication)
			admin.PUT("/applications/:id/reject", adminHandler.RejectApplication)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
			admin.GET("/notifications", adminHandler.ListNotifications)
			admin.PUT("/notifications/:id/read", adminHandler.MarkNotificationRead)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	return r
}
