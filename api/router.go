package api

import (
	"net/http"

	"backoffice/api/health"
	"backoffice/api/middleware"
	"backoffice/api/response"
	"backoffice/api/sale"
	"backoffice/config"
	"backoffice/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router Route configuration
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	resolver         middleware.PrincipalResolver
	healthController *health.Controller
	saleController   *sale.Controller
}

func NewRouter(
	cfg *config.Config,
	resolver middleware.PrincipalResolver,
	healthController *health.Controller,
	saleController *sale.Controller,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	response.UseJSONFieldNames()
	engine := gin.New()

	// order matters: the request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:           engine,
		config:           cfg,
		resolver:         resolver,
		healthController: healthController,
		saleController:   saleController,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)

		secured := apiGroup.Group("", middleware.AuthMiddleware(r.resolver))
		r.saleController.RegisterRoutes(secured)
	}

	if r.config.Server.MetricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
