package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/distroerp/backend/internal/infrastructure/config"
	"github.com/distroerp/backend/internal/interfaces/http/handler"
	"github.com/distroerp/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Stock       *handler.StockHandler
	Order       *handler.OrderHandler
	Fulfillment *handler.FulfillmentHandler
}

// New builds the gin engine with middleware and all routes mounted
func New(cfg *config.Config, logger *zap.Logger, handlers Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	handlers.System.RegisterRoutes(engine)

	v1 := engine.Group("/api/v1")
	{
		handlers.Stock.RegisterRoutes(v1)
		handlers.Order.RegisterRoutes(v1)
		handlers.Fulfillment.RegisterRoutes(v1)
	}

	return engine
}
