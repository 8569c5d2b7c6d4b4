// internal/router/router.go
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/handlers"
	"github.com/hirehub/hirehub-backend/internal/metrics"
	"github.com/hirehub/hirehub-backend/internal/middleware"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/services"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

// Initialize wires services and handlers onto a gin engine. The returned
// func drains background work and must be called once the server has stopped.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, func(), error) {
	// Initialize storage
	auditLog := repository.NewAuditLog(db)
	applicationStore := repository.NewApplicationStore(db, auditLog)
	ownershipRepo := repository.NewOwnershipRepository(db)

	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	notificationService := services.NewNotificationService(db, cfg)
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db, storageService)
	jobService := services.NewJobService(db, ownershipRepo)
	ownershipService := services.NewOwnershipService(ownershipRepo, applicationStore, cfg.Lifecycle.EnforceAssignee)
	applicationService := services.NewApplicationService(
		applicationStore,
		auditLog,
		ownershipService,
		jobService,
		userService,
		userService,
		notificationService,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	jobHandler := handlers.NewJobHandler(jobService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimiter := middleware.PerSecond(cfg.RateLimit.GeneralPerSecond, cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.PerMinute(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)

	r := gin.New()
	r.MaxMultipartMemory = services.MaxResumeSize + 1<<20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORS)))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(generalLimiter.Middleware())
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Profile routes
		me := api.Group("/me")
		me.Use(middleware.AuthRequired())
		{
			me.GET("/profile", userHandler.GetProfile)
			me.PATCH("/profile", userHandler.UpdateProfile)
			me.POST("/resume", middleware.RequireRoles(models.RoleCandidate), userHandler.UploadResume)
		}

		// Job routes
		jobs := api.Group("/jobs")
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/mine", middleware.AuthRequired(), middleware.RequireRoles(models.RoleHR, models.RoleLead), jobHandler.ListMine)
			jobs.GET("/:id", jobHandler.GetJob)

			manage := jobs.Group("")
			manage.Use(middleware.AuthRequired(), middleware.RequireRoles(models.RoleHR, models.RoleLead))
			{
				manage.POST("", jobHandler.CreateJob)
				manage.PATCH("/:id", jobHandler.UpdateJob)
				manage.DELETE("/:id", jobHandler.DeleteJob)
			}
		}

		// Application routes
		applications := api.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.POST("", middleware.RequireRoles(models.RoleCandidate), applicationHandler.Submit)
			applications.GET("", applicationHandler.List)
			applications.GET("/me", middleware.RequireRoles(models.RoleCandidate), applicationHandler.List)
			applications.GET("/hr", middleware.RequireRoles(models.RoleHR), applicationHandler.List)
			applications.GET("/lead", middleware.RequireRoles(models.RoleLead), applicationHandler.List)
			applications.GET("/:id", applicationHandler.Get)
			applications.PATCH("/:id/status", middleware.RequireRoles(models.RoleHR, models.RoleLead), applicationHandler.TransitionStatus)
			applications.GET("/:id/history", applicationHandler.History)
		}
	}

	cleanup := func() {
		generalLimiter.Stop()
		authLimiter.Stop()
		notificationService.Wait()
	}
	return r, cleanup, nil
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
