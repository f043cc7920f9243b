package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tarjama/api/internal/cache"
	"github.com/tarjama/api/internal/client"
	"github.com/tarjama/api/internal/config"
	"github.com/tarjama/api/internal/database"
	"github.com/tarjama/api/internal/handler"
	"github.com/tarjama/api/internal/middleware"
	"github.com/tarjama/api/internal/model"
	"github.com/tarjama/api/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var viewerCache handler.ViewerCache
	if redisCache, err := cache.NewRedisCache(cfg.RedisURL); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
	} else {
		viewerCache = redisCache
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	youtubeClient := client.NewYouTubeClient()
	llmClient := client.NewLLMClient(cfg.LLMProxyURL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL, cfg.AdminEmails)
	videoHandler := handler.NewVideoHandler(db, youtubeClient, viewerCache)
	playlistHandler := handler.NewPlaylistHandler(db)
	transcriptHandler := handler.NewTranscriptHandler(db, viewerCache)
	taskHandler := handler.NewTaskHandler(db)
	publicHandler := handler.NewPublicHandler(db, viewerCache)
	adminHandler := handler.NewAdminHandler(db)
	chatHandler := handler.NewChatHandler(llmClient)

	// Initialize and start background maintenance worker if enabled
	var maintenanceWorker *worker.MaintenanceWorker
	if cfg.WorkerEnabled {
		maintenanceWorker = worker.NewMaintenanceWorker(db, youtubeClient, worker.Config{
			Interval: cfg.WorkerInterval,
		})
		ctx := context.Background()
		go maintenanceWorker.Start(ctx)
		log.Println("Background maintenance worker started")
	}

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Worker status
	r.GET("/worker/status", func(c *gin.Context) {
		if maintenanceWorker != nil {
			c.JSON(200, maintenanceWorker.GetStatus())
		} else {
			c.JSON(200, gin.H{"enabled": false, "message": "Worker is disabled"})
		}
	})

	// OAuth login
	r.GET("/auth/google", authHandler.GoogleAuth)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)
	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/auth/logout", authHandler.Logout)

	// Public viewer surface, no authentication
	public := r.Group("/api/public")
	{
		public.GET("/playlists", publicHandler.ListPlaylists)
		public.GET("/playlists/:id", publicHandler.GetPlaylist)
		public.GET("/videos/:id", publicHandler.GetVideo)
		public.GET("/videos/:id/transcript", publicHandler.GetTranscript)
		public.POST("/issues", publicHandler.ReportIssue)
	}

	editorRoles := []string{model.RoleAdmin, model.RoleArabicEditor, model.RoleTranslationsEditor}

	// Authenticated API
	api := r.Group("/api", middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/me", authHandler.Me)

		// Videos
		api.GET("/videos", videoHandler.List)
		api.GET("/videos/:id", videoHandler.Get)
		api.POST("/videos", middleware.RequireRole(model.RoleAdmin), videoHandler.Create)
		api.PUT("/videos/:id", middleware.RequireRole(model.RoleAdmin), videoHandler.Update)
		api.DELETE("/videos/:id", middleware.RequireRole(model.RoleAdmin), videoHandler.Delete)

		// Playlists
		api.GET("/playlists", playlistHandler.List)
		api.GET("/playlists/:id", playlistHandler.Get)
		api.POST("/playlists", middleware.RequireRole(model.RoleAdmin), playlistHandler.Create)
		api.PUT("/playlists/:id", middleware.RequireRole(model.RoleAdmin), playlistHandler.Update)
		api.DELETE("/playlists/:id", middleware.RequireRole(model.RoleAdmin), playlistHandler.Delete)
		api.PUT("/playlists/:id/videos", middleware.RequireRole(model.RoleAdmin), playlistHandler.SetVideos)

		// Transcripts; per-language edit rights are checked in the handler
		api.GET("/videos/:id/transcripts", transcriptHandler.List)
		api.GET("/videos/:id/transcripts/:language", middleware.RequireRole(editorRoles...), transcriptHandler.Get)
		api.PUT("/videos/:id/transcripts/:language/draft", middleware.RequireRole(editorRoles...), transcriptHandler.SaveDraft)
		api.POST("/videos/:id/transcripts/:language/publish", middleware.RequireRole(editorRoles...), transcriptHandler.Publish)
		api.POST("/videos/:id/transcripts/:language/discard", middleware.RequireRole(editorRoles...), transcriptHandler.DiscardDraft)
		api.POST("/videos/:id/transcripts/:language/import", middleware.RequireRole(editorRoles...), transcriptHandler.ImportSRT)
		api.GET("/videos/:id/transcripts/:language/export", transcriptHandler.ExportSRT)
		api.PUT("/videos/:id/transcripts/:language/status", middleware.RequireRole(model.RoleAdmin), transcriptHandler.UpdateStatus)

		// Tasks
		tasks := api.Group("/tasks", middleware.RequireRole(editorRoles...))
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		// Admin panel
		admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.GET("/issues", adminHandler.ListIssues)
			admin.PUT("/issues/:id", adminHandler.ReviewIssue)
			admin.POST("/chat", chatHandler.Chat)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
