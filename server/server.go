package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Hummify/cache"
	"Hummify/config"
	"Hummify/core/artifact"
	"Hummify/core/auth"
	"Hummify/core/cleanup"
	"Hummify/core/synth"
	"Hummify/db"
	"Hummify/logger"
	"Hummify/model"
	"Hummify/repository"
	"Hummify/storage"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// Start initializes dependencies, wires the services and runs the HTTP
// server until the process receives an interrupt.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(getLogLevel()),
		OutputPath: "logs/hummify.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.Init(cfg.JWTSecret, cfg.JWTTTL)

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	// GORM负责 artifact 表的自动迁移
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(
		&model.UploadedRecording{},
		&model.ConvertedArtifact{},
		&model.SavedArtifact{},
	); err != nil {
		logger.Fatal("Failed to migrate artifact tables", logger.ErrorField(err))
	}

	// Redis is optional: without it the artifact cache is disabled.
	var redisClient *redis.Client
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, artifact cache disabled", logger.ErrorField(err))
	} else {
		redisClient = cache.RedisClient
		defer cache.CloseRedis()
	}
	artifactCache := cache.NewArtifactCache(redisClient, cfg.RetentionWindow)

	// 初始化 MinIO 客户端
	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	recordingRepo := repository.NewMySQLRecordingRepository(db.DB)
	convertedRepo := repository.NewMySQLConvertedRepository(db.DB)
	savedRepo := repository.NewMySQLSavedRepository(db.DB)

	engine := synth.NewProcessEngine(cfg)
	conversion := artifact.NewConversionService(engine, store, convertedRepo, artifactCache, cfg.DefaultTempo)
	promotion := artifact.NewPromotionService(convertedRepo, savedRepo, store)

	sweeper := cleanup.NewSweeper(recordingRepo, convertedRepo, savedRepo, store, artifactCache,
		cfg.RetentionWindow, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	apiHandler := NewAPIHandler(userRepo, recordingRepo, conversion, promotion, store, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// 用户认证相关的API端点
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Hum recordings
	router.HandleFunc("/api/audio/upload", apiHandler.AuthMiddleware(apiHandler.UploadRecordingHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/audio", apiHandler.AuthMiddleware(apiHandler.ListRecordingsHandler)).Methods(http.MethodGet)

	// Conversion
	router.HandleFunc("/api/convert", apiHandler.AuthMiddleware(apiHandler.ConvertHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/convert/ws", apiHandler.AuthMiddleware(apiHandler.ConvertWSHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/convert/{id}", apiHandler.AuthMiddleware(apiHandler.GetConvertedHandler)).Methods(http.MethodGet)

	// Saved artifacts
	router.HandleFunc("/api/saved", apiHandler.AuthMiddleware(apiHandler.PromoteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/saved", apiHandler.AuthMiddleware(apiHandler.ListSavedHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/saved/{id}", apiHandler.AuthMiddleware(apiHandler.GetSavedHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/saved/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSavedHandler)).Methods(http.MethodDelete)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // conversions can take up to the synth timeout
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getLogLevel() string {
	if level, ok := os.LookupEnv("LOG_LEVEL"); ok {
		return level
	}
	return "info"
}
