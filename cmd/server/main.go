package main

import (
	"log"

	_ "kanban-board/docs"
	"kanban-board/internal/config"
	"kanban-board/internal/logger"
	"kanban-board/internal/server"

	"go.uber.org/zap"
)

// @title           Kanban API
// @version         1.0
// @description     API for managing Kanban boards, their columns, tasks and subtasks.

// @contact.name   octaview
// @contact.url    t.me/octaview
// @contact.email  octaviewes@gmail.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	s, err := server.Init(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("❌ Server initialization failed", zap.Error(err))
	}

	s.Run()
}
