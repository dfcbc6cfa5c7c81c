// Package router maps the public HTTP surface onto the slot handlers and
// stacks the shared middleware in a fixed order: request id, request
// logging, CORS, rate limiting, then the read cache on the week endpoint.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slotify/slotify/internal/config"
	"github.com/slotify/slotify/internal/handler"
	"github.com/slotify/slotify/internal/middleware"
)

// RegisterRoutes wires every endpoint of the service.  rdb may be nil; the
// cache and rate-limit middleware degrade to pass-through in that case.
func RegisterRoutes(e *echo.Echo, h *handler.SlotHandler, cfg config.Config, logger *zap.Logger, rdb *redis.Client) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FrontendOrigin},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	weekCache := middleware.NewWeekCache(config.LoadCacheConfig(), rdb)
	e.GET("/slots", h.GetWeek, weekCache)
	e.POST("/slots", h.CreateSlot)
	e.DELETE("/slots/:id", h.DeleteSlot)

	e.POST("/slots/:slotId/exceptions", h.CreateException)
	e.DELETE("/slots/:slotId/exceptions", h.DeleteExceptionByDate)
	// Static "exceptions" segment wins over :id above, so both routes coexist.
	e.DELETE("/slots/exceptions/:id", h.DeleteExceptionByID)
}
