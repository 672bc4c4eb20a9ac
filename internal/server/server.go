package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban-board/internal/config"
	"kanban-board/internal/events"
	"kanban-board/internal/handler"
	"kanban-board/internal/job"
	"kanban-board/internal/metrics"
	"kanban-board/internal/middleware"
	"kanban-board/internal/repository"
	"kanban-board/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventBus carries board change events from the store to event streams.
type EventBus interface {
	store.Publisher
	handler.EventSubscriber
}

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
	Store  *store.Store

	cron  *cron.Cron
	redis *redis.Client
}

// Init opens the database and Redis, then builds the server.
func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := openDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	rdb, err := openRedis(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}
	var bus EventBus = events.Nop{}
	if rdb != nil {
		bus = events.NewBus(rdb, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, err := New(cfg, logger, db, bus, reg)
	if err != nil {
		return nil, err
	}
	s.redis = rdb
	return s, nil
}

// New wires repositories, the workspace store, handlers and routes over
// already opened connections.
func New(cfg *config.Config, logger *zap.Logger, db *gorm.DB, bus EventBus, reg *prometheus.Registry) (*Server, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	m := metrics.NewWithRegistry(reg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)

	boardStore := store.New(boardRepo, bus, m, logger)

	// Initialize handlers
	tokenTTL := time.Duration(cfg.JWTExpiryHours) * time.Hour
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, tokenTTL)
	boardHandler := handler.NewBoardHandler(boardStore, logger)
	taskHandler := handler.NewTaskHandler(boardStore, logger)
	eventsHandler := handler.NewEventsHandler(bus, logger)
	healthHandler := handler.NewHealthHandler(sqlDB)

	evictionJob := job.NewEvictionJob(boardStore, time.Duration(cfg.EvictIdleAfter)*time.Minute, logger)
	scheduler, err := job.Schedule(cfg.EvictSchedule, evictionJob, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Env != "dev" && cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.Metrics(m))

	// Ops routes
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Board routes
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/active", boardHandler.GetActive)
		authorized.POST("/boards", boardHandler.Create)
		authorized.PUT("/boards/:index", boardHandler.Update)
		authorized.DELETE("/boards/:index", boardHandler.Delete)
		authorized.POST("/boards/:index/activate", boardHandler.Activate)

		// Task routes, on the active board
		authorized.GET("/tasks", taskHandler.Search)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PUT("/columns/:col/tasks/:task", taskHandler.Update)
		authorized.DELETE("/columns/:col/tasks/:task", taskHandler.Delete)
		authorized.PATCH("/columns/:col/tasks/:task/subtasks/:sub", taskHandler.SetSubtaskCompleted)
		authorized.POST("/columns/:col/tasks/:task/move", taskHandler.Move)

		// Event stream
		authorized.GET("/ws", eventsHandler.Stream)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Logger: logger,
		Store:  boardStore,
		cron:   scheduler,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	s.cron.Start()

	go func() {
		s.Logger.Info("🚀 Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("❌ Failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("🛑 Shutting down server...")

	// wait for a running eviction before closing connections
	<-s.cron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}

	s.close()
	s.Logger.Info("✅ Server exited properly")
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Logger.Warn("Failed to close Redis", zap.Error(err))
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.Logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
