package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/courierlabs/podproof/internal/config"
	"github.com/courierlabs/podproof/internal/server/http/handlers"
	"github.com/courierlabs/podproof/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ProofFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	if cfg.AllowedOrigin != "" {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: []string{cfg.AllowedOrigin},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	proofHandler := handlers.NewProofHandler(facade)

	engine.POST("/submit-proof", proofHandler.Submit)
	engine.GET("/test-order/:orderNumber", proofHandler.TestOrder)
	engine.GET("/health", proofHandler.Health)

	return engine
}
