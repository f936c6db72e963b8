// Package httpapi exposes the match service over HTTP with gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/logger"
)

// NewRouter builds the gin engine with every route mounted.
func NewRouter(appCtx *app.AppContext) *gin.Engine {
	cfg := appCtx.Config
	log := logger.ForComponent(appCtx.Logger, "http")

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.HTTP.CORSOrigins)))

	h := NewHandler(appCtx)

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(appCtx.Registry, promhttp.HandlerOpts{})))

	limiter := NewViewerRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)

	v1 := router.Group("/v1")
	v1.Use(RequireViewer(), limiter.Middleware())

	// Discovery
	v1.GET("/discovery", h.Discover)
	v1.POST("/discovery/seen", h.MarkSeen)
	v1.PUT("/preferences", h.UpdatePreferences)

	// Swipes
	v1.POST("/swipes", h.Swipe)
	v1.POST("/swipes/undo", h.UndoSwipe)
	v1.GET("/liked-me", h.ListLikedMe)
	v1.GET("/liked-me/count", h.CountLikedMe)

	// Matches
	v1.DELETE("/matches/:id", h.Unmatch)
	v1.POST("/matches/:id/messages", h.AuthorizeMessage)
	v1.POST("/blocks", h.Block)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", ViewerHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// no configured origins: open CORS without credentials
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}
