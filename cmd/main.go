package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/filerunner/backend/config"
	"github.com/filerunner/backend/internal/audit"
	"github.com/filerunner/backend/internal/dto"
	"github.com/filerunner/backend/internal/handler"
	"github.com/filerunner/backend/internal/middleware"
	"github.com/filerunner/backend/internal/repository"
	"github.com/filerunner/backend/internal/router"
	"github.com/filerunner/backend/internal/service"
	"github.com/filerunner/backend/pkg/database"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/filerunner/backend/pkg/redis"
	"github.com/filerunner/backend/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.EnsureAdminUser(db, config.Admin.Email, config.Admin.Password); err != nil {
		logger.GetLogger().Fatal("Failed to ensure admin user", zap.Error(err))
	}

	store, err := storage.NewLocalStorage(config.Storage.Path)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize storage", zap.Error(err))
	}

	redisClient := redis.NewClient(redis.Config{
		Enabled:  config.Redis.Enabled,
		Addr:     config.RedisAddress(),
		Password: config.Redis.Password,
		DB:       config.Redis.Database,
		PoolSize: config.Redis.PoolSize,
		CacheTTL: config.Redis.CacheTTL,
	}, logger.GetLogger())
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	var auditPublisher *audit.Publisher
	if config.Audit.Enabled {
		auditPublisher = audit.NewPublisher(config.Audit.Brokers, config.Audit.Topic)
	}
	defer auditPublisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Services
	tokenService := service.NewTokenService(config.JWT.Secret, config.JWT.AccessExpiry, config.JWT.RefreshExpiry)
	sessionService := service.NewSessionService(tokenService, sessionRepo, userRepo, auditPublisher)
	userService := service.NewUserService(userRepo, sessionService, auditPublisher, config.App.AllowSignup)
	projectService := service.NewProjectService(projectRepo, redisClient)
	folderService := service.NewFolderService(folderRepo, projectRepo)
	fileService := service.NewFileService(fileRepo, folderRepo, projectRepo, projectService, store, config.Storage.MaxFileSize)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, sessionService)
	projectHandler := handler.NewProjectHandler(projectService, fileService)
	folderHandler := handler.NewFolderHandler(folderService)
	fileHandler := handler.NewFileHandler(fileService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	if err := dto.RegisterValidators(); err != nil {
		logger.GetLogger().Fatal("Failed to register validators", zap.Error(err))
	}

	r := router.NewRouter(
		authHandler,
		projectHandler,
		folderHandler,
		fileHandler,
		healthHandler,
		authMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("host", config.App.Host),
			zap.String("port", config.App.Port),
		)
		if err := r.Run(config.App.Host + ":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
