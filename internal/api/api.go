package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hkretail/promo-dispatch/internal/api/handlers"
	"github.com/hkretail/promo-dispatch/internal/api/middleware"
	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/service"
)

type Services struct {
	CalcService *service.CalcService
}

func NewRouter(services *Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.CalcService != nil {
		calcHandler := handlers.NewCalcHandler(services.CalcService, cfg.App.UploadDir, cfg.App.OutputDir)
		calcGroup := apiGroup.Group("/calc")
		{
			calcGroup.POST("/runs", calcHandler.CreateRun)
			calcGroup.GET("/runs", calcHandler.ListRuns)
			calcGroup.GET("/runs/:id", calcHandler.GetRun)
			calcGroup.GET("/runs/:id/warnings", calcHandler.GetWarnings)
			calcGroup.GET("/runs/:id/detail", calcHandler.GetDetail)
			calcGroup.GET("/runs/:id/summary", calcHandler.GetSummary)
			calcGroup.GET("/runs/:id/download", calcHandler.Download)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
