package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnpulse_backend/internal/config"
	"learnpulse_backend/internal/controller"
	"learnpulse_backend/internal/repository"
	"learnpulse_backend/internal/service"
	"learnpulse_backend/pkg/database"
	"learnpulse_backend/pkg/logger"
	"learnpulse_backend/pkg/monitoring"
	"learnpulse_backend/pkg/security"
	"learnpulse_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user    *repository.UserRepository
	ticket  *repository.SupportTicketRepository
	dataset *repository.DatasetRepository
	session *repository.SessionRepository
	cache   *repository.CacheRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	analytics *service.AnalyticsService
	grounding *service.GroundingService
	intent    *service.IntentService
	support   *service.SupportService
	ai        *service.AIService
	assistant *service.AssistantService
	reports   *service.ReportService
}

type controllers struct {
	auth      *controller.AuthController
	chat      *controller.ChatController
	analytics *controller.AnalyticsController
	reports   *controller.ReportController
	admin     *controller.AdminController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	sessionTTL := time.Duration(cfg.Assistant.SessionTTLDays) * 24 * time.Hour
	cacheTTL := time.Duration(cfg.Assistant.CacheTTLHours) * time.Hour

	return &repositories{
		user:    repository.NewUserRepository(db),
		ticket:  repository.NewSupportTicketRepository(db),
		dataset: repository.NewDatasetRepository(cfg.Dataset.Path),
		session: repository.NewSessionRepository(rdb, sessionTTL),
		cache:   repository.NewCacheRepository(rdb, cacheTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.analytics = service.NewAnalyticsService(repos.dataset)
	s.grounding = service.NewGroundingService(s.analytics)
	s.intent = service.NewIntentService(repos.dataset)
	s.support = service.NewSupportService(repos.ticket, s.storage, service.NewNotifier(&cfg.Support))
	s.ai = service.NewAIService(cfg.AI)
	s.assistant = service.NewAssistantService(repos.session, s.intent, s.grounding, s.support, s.ai)
	s.reports = service.NewReportService(s.analytics)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		chat:      controller.NewChatController(s.assistant, s.intent, s.auth),
		analytics: controller.NewAnalyticsController(s.analytics, s.intent, repos.cache, s.auth),
		reports:   controller.NewReportController(s.reports, s.auth),
		admin:     controller.NewAdminController(repos.dataset, s.intent),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, repos, db, rdb)

	// Load the dataset at startup so the first chat turn doesn't pay for it.
	// A missing file is logged, not fatal: the admin reload endpoint can fix
	// it without a restart.
	if err := repos.dataset.Reload(); err != nil {
		logger.Log.Warn("Dataset not loaded at startup", zap.Error(err))
	}

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("instructor-assistant", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/artifacts", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
