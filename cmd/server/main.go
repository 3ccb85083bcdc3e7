package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dogubilet/ticket-backend/internal/config"
	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/events"
	"github.com/dogubilet/ticket-backend/internal/handlers"
	"github.com/dogubilet/ticket-backend/internal/middleware"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/internal/pricing"
	"github.com/dogubilet/ticket-backend/internal/services"
	"github.com/dogubilet/ticket-backend/pkg/assistant"
	"github.com/dogubilet/ticket-backend/pkg/jwt"
	"github.com/dogubilet/ticket-backend/pkg/routing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Doğu Bilet ticket backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	loc := cfg.Location()
	logger.WithField("timezone", loc.String()).Info("Schedule timezone loaded")

	// Initialize database connection
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	txManager := database.NewTxManager(db)
	tripRepository := database.NewTripRepository()
	seatRepository := database.NewSeatRepository()
	ticketRepository := database.NewTicketRepository()
	userRepository := database.NewUserRepository(db)
	statsRepository := database.NewStatsRepository(db)

	// Redis backs the route cache and the chatbot rate limiter; both work without it
	redisClient := pricing.NewRedisClient(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Pricing oracle
	var router routing.Router
	if cfg.Pricing.ORSAPIKey != "" {
		router = routing.NewORSClient(routing.ORSConfig{
			BaseURL: cfg.Pricing.ORSBaseURL,
			APIKey:  cfg.Pricing.ORSAPIKey,
			Timeout: cfg.Pricing.Timeout,
		})
	} else {
		logger.Warn("ORS_API_KEY not set, trips will be priced with the fallback quote")
	}
	routeCache := pricing.NewRedisRouteCache(redisClient, cfg.Pricing.CacheTTL, logger)
	oracle := pricing.NewCachedOracle(router, routeCache, logger)

	// Ticket events
	publisher := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
	defer publisher.Close()

	// Text generation
	var generator assistant.TextGenerator
	if cfg.Assistant.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiClient(context.Background(), assistant.GeminiConfig{
			APIKey: cfg.Assistant.GeminiAPIKey,
			Model:  cfg.Assistant.Model,
		})
		if err != nil {
			logger.WithError(err).Warn("Gemini client unavailable, chatbot will answer trip queries only")
		} else {
			generator = gemini
		}
	}

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authService := services.NewAuthService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	catalogService := services.NewCatalogService(txManager, tripRepository, seatRepository, oracle, loc, logger)
	ticketService := services.NewTicketService(txManager, tripRepository, seatRepository, ticketRepository, publisher, loc, logger)
	chatbotService := services.NewChatbotService(catalogService, services.NewQueryExtractor(models.CityNames()), generator, loc, logger)
	adminService := services.NewAdminService(statsRepository, loc, logger)
	cronService := services.NewCronService(catalogService, cfg.Bootstrap.MaintenanceSchedule, loc, logger)

	if cfg.Bootstrap.RunOnStart {
		bootstrapService := services.NewBootstrapService(func(ctx context.Context) error {
			return database.Migrate(ctx, db)
		}, catalogService, authService, cfg.Bootstrap.AdminEmail, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if _, err := bootstrapService.Run(ctx); err != nil {
			cancel()
			logger.Fatalf("Bootstrap failed: %v", err)
		}
		cancel()
	}

	if cfg.Bootstrap.CronEnabled {
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
	} else {
		logger.Info("Cron service disabled (CRON_ENABLED=false)")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWT.CookieSecure, logger)
	tripHandler := handlers.NewTripHandler(catalogService, logger)
	ticketHandler := handlers.NewTicketHandler(ticketService, logger)
	chatbotHandler := handlers.NewChatbotHandler(chatbotService, logger)
	adminHandler := handlers.NewAdminHandler(adminService, cronService, logger)

	// Initialize Gin router
	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		engine.Use(middleware.RequestLogger(logger))
	}

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthCheckHandler(db))

	requireAuth := middleware.AuthMiddleware(jwtService)

	v1 := engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		profile := v1.Group("/profile", requireAuth)
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", authHandler.UpdateProfile)
			profile.PUT("/password", authHandler.ChangePassword)
		}

		v1.GET("/cities", tripHandler.ListCities)

		trips := v1.Group("/trips")
		{
			trips.GET("/search", tripHandler.SearchTrips)
			trips.GET("/:id/seats", requireAuth, ticketHandler.GetSeatMap)
		}

		tickets := v1.Group("/tickets", requireAuth)
		{
			tickets.POST("", ticketHandler.Purchase)
			tickets.GET("", ticketHandler.List)
			tickets.POST("/:id/refund", ticketHandler.Refund)
		}

		v1.POST("/chatbot", requireAuth, middleware.RateLimit(cfg.RateLimit, redisClient, logger), chatbotHandler.Chat)

		admin := v1.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.POST("/maintenance/rollforward", adminHandler.RunRollForward)
			admin.GET("/maintenance/status", adminHandler.GetMaintenanceStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cfg.Bootstrap.CronEnabled {
		cronService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
