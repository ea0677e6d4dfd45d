package server

import (
	"net/http"
	"os"

	cachepackage "recipe-service/cache"
	"recipe-service/config"
	"recipe-service/database"
	"recipe-service/images"
	"recipe-service/store"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitLogger sets up the global logger used by every command
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

func StartServer(cfg *config.Config) {
	logger.Info("Starting Recipe Service...")

	// Initialize database
	dbConn := database.InitializeDatabase(cfg.Database)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.InitializeCache(cfg.Cache)
	defer cache.Close()

	// Initialize media storage
	media, err := images.NewStorage(cfg.Media.Root)
	if err != nil {
		logger.Error("Failed to initialize media storage", zap.Error(err))
		os.Exit(1)
	}

	router := NewRouter(Deps{
		Store:    store.New(dbConn),
		Images:   media,
		Cache:    cache,
		TokenTTL: cfg.Cache.TokenTTL,
	})

	logger.Info("Recipe Service started on port " + cfg.Server.Port)
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: /api/user/, /api/recipe/tags/, /api/recipe/ingredients/, /api/recipe/recipes/")

	// Start server
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
