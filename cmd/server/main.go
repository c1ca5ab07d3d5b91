package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hkretail/promo-dispatch/internal/api"
	"github.com/hkretail/promo-dispatch/internal/cache"
	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/repository"
	"github.com/hkretail/promo-dispatch/internal/repository/postgres"
	"github.com/hkretail/promo-dispatch/internal/service"
	"github.com/hkretail/promo-dispatch/internal/storage"
	"github.com/hkretail/promo-dispatch/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	runRepo := repository.NewRunRepository(db.DB)
	dispatchRepo := repository.NewDispatchRepository(db)

	runCache, err := cache.NewRunCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		runCache = cache.NewNoopRunCache()
	}

	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		s3, err := storage.NewS3Client(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Archive storage unavailable, artifact archiving disabled")
		} else {
			archive = s3
		}
	}

	calcService := service.NewCalcService(cfg, runRepo, dispatchRepo, runCache, archive)

	router := api.NewRouter(&api.Services{CalcService: calcService}, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
