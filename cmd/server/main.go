package main

import (
	"cctv-survey/internal/config"
	"cctv-survey/internal/database"
	"cctv-survey/internal/logger"
	"cctv-survey/internal/routes"
	"cctv-survey/internal/services"
	"context"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	var runs services.RunStore = services.NopRunStore{}
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL, cfg)
		if err != nil {
			logr.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		runs = services.NewBunRunStore(db)
	} else {
		logr.Warn("DATABASE_URL not set, import runs will not be recorded")
	}

	if cfg.JWTSecret == "" {
		logr.Warn("JWT_SECRET not set, bearer tokens are forwarded without verification")
	}

	r := routes.NewRouter(cfg, logr, runs)

	// imports run inside the request
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("strapi_url", cfg.StrapiURL),
			zap.Int("import_workers", cfg.ImportWorkers))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
