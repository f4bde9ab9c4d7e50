package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knead/config"
	chatHttp "knead/internal/chat/delivery/http"
	chatModels "knead/internal/chat/model"
	chatRepository "knead/internal/chat/repository"
	chatUsecase "knead/internal/chat/usecase"
	"knead/internal/fallback"
	userHttp "knead/internal/user/delivery/http"
	userModels "knead/internal/user/model"
	userRepository "knead/internal/user/repository"
	userUsecase "knead/internal/user/usecase"
	"knead/pkg/db"
	"knead/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	v, err := config.LoadConfig("config")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bunDB, err := db.NewBunDB(ctx, cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer bunDB.Close()

	err = db.Migrate(ctx, bunDB,
		(*userModels.User)(nil),
		(*userModels.Preferences)(nil),
		(*chatModels.Conversation)(nil),
		(*chatModels.Message)(nil),
	)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	sample, err := fallback.NewSample()
	if err != nil {
		log.Fatalf("build fallback dataset: %v", err)
	}

	userRepo := userRepository.NewUserRepository(bunDB, *appLogger)
	chatRepo := chatRepository.NewChatRepository(bunDB, *appLogger)

	userUC := userUsecase.NewUserUsecase(userRepo, sample, *appLogger, *cfg)
	chatUC := chatUsecase.NewChatUsecase(chatRepo, userRepo, sample, *appLogger)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1 := r.Group("/api/v1")
	userHttp.NewUserHandler(userUC, *appLogger).MapRoutes(v1)
	chatHttp.NewChatHandler(chatUC, *appLogger).MapRoutes(v1)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("listening", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("shutdown", "err", err)
	}
}
