package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hvac-dispatch-backend/config"
	"hvac-dispatch-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, srv *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimitPerSec := srv.RateLimitPerSec
	if rateLimitPerSec <= 0 {
		rateLimitPerSec = 10
	}
	cacheTTLSeconds := srv.CacheTTLSeconds
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}
	cacheTTL := time.Duration(cacheTTLSeconds) * time.Second

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5, srv.RequestIPHeader)

	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter, mw.Viewer())
	{
		// Calendar & scheduling
		api.GET("/calendar", handler.GetCalendar)
		api.GET("/conflicts", handler.GetConflicts)
		api.POST("/orders/:order_id/reschedule", handler.Reschedule)

		// Kanban board
		api.GET("/board", handler.GetBoard)
		api.POST("/board/cards/:order_id/move", handler.MoveCard)
		api.POST("/board/columns/:status/expand", handler.ExpandColumn)

		// Workload is read-heavy and safe to cache briefly.
		api.GET("/workload", caching, handler.GetWorkload)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
