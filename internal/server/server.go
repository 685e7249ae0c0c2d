package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/lostfound/internal/config"
	"anoa.com/lostfound/internal/middleware"
	"anoa.com/lostfound/pkg/storage"

	adminHttp "anoa.com/lostfound/internal/modules/admin/delivery/http"
	adminService "anoa.com/lostfound/internal/modules/admin/service"

	claimHttp "anoa.com/lostfound/internal/modules/claim/delivery/http"
	claimService "anoa.com/lostfound/internal/modules/claim/service"

	itemHttp "anoa.com/lostfound/internal/modules/item/delivery/http"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	itemService "anoa.com/lostfound/internal/modules/item/service"

	notiHttp "anoa.com/lostfound/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/lostfound/internal/modules/notification/repository"
	notifService "anoa.com/lostfound/internal/modules/notification/service"

	profileHttp "anoa.com/lostfound/internal/modules/profile/delivery/http"
	profileService "anoa.com/lostfound/internal/modules/profile/service"

	resolutionHttp "anoa.com/lostfound/internal/modules/resolution/delivery/http"
	resolutionService "anoa.com/lostfound/internal/modules/resolution/service"

	searchService "anoa.com/lostfound/internal/modules/search/service"

	uploadHttp "anoa.com/lostfound/internal/modules/upload/delivery/http"

	userHttp "anoa.com/lostfound/internal/modules/user/delivery/http"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	userService "anoa.com/lostfound/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepository := userRepo.NewUserRepository(db)
	itemRepository := itemRepo.NewRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)

	searchSvc := newSearchService(cfg)
	imageStorage := newImageStorage(cfg)

	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, cfg.UnreadCacheTTL)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc)

	itemSvc := itemService.NewService(itemRepository, userRepository, searchSvc, cfg.ChallengeBcryptCost)
	itemHandler := itemHttp.NewItemHandler(itemSvc)

	claimSvc := claimService.NewClaimService(itemRepository, userRepository, notificationSvc, redisClient, cfg.ChallengeRetryCooldown)
	claimHandler := claimHttp.NewClaimHandler(claimSvc)

	resolutionSvc := resolutionService.NewResolutionService(itemRepository, searchSvc)
	resolutionHandler := resolutionHttp.NewResolutionHandler(resolutionSvc)

	profileSvc := profileService.NewProfileService(userRepository, itemRepository)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	adminSvc := adminService.NewAdminService(userRepository, itemRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	uploadHandler := uploadHttp.NewUploadHandler(imageStorage)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/items", itemHandler.ListActive)
	api.GET("/items/search", itemHandler.Search)
	api.GET("/items/:item_id", itemHandler.GetItem)
	api.GET("/archive/:username", itemHandler.ListArchived)
	api.GET("/users/:username", profileHandler.GetProfileByUsername)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/stats", adminHandler.GetStats)
		}

		// Item routes
		protected.POST("/items", itemHandler.CreateItem)
		protected.GET("/items/mine", itemHandler.ListMine)
		protected.POST("/items/:item_id/claims", claimHandler.SubmitClaim)
		protected.GET("/items/:item_id/claims", claimHandler.ListClaims)
		protected.PUT("/items/:item_id/resolve", resolutionHandler.Resolve)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		protected.POST("/uploads", uploadHandler.UploadImage)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func newSearchService(cfg *config.Config) searchService.SearchService {
	host := cfg.MeiliSearchHost
	if host == "" {
		zap.L().Info("MEILISEARCH_HOST not set, item search falls back to the database")
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}

	client := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliSearchService(client)
}

func newImageStorage(cfg *config.Config) storage.ImageStorage {
	if cfg.CloudinaryURL == "" && cfg.CloudinaryCloudName == "" {
		zap.L().Info("cloudinary not configured, image uploads disabled")
		return nil
	}

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
	if err != nil {
		zap.L().Warn("failed to initialize cloudinary storage, image uploads disabled", zap.Error(err))
		return nil
	}
	return imageStorage
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
