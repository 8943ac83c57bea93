package handlers

import (
	"github.com/SscSPs/coinvest_backend/cmd/docs"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// A nil limiter disables per-account rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	if rateLimiter != nil {
		r.GET("/", middleware.IPRateLimit(rateLimiter), getHome(cfg.DisplayCurrency))
	} else {
		r.GET("/", getHome(cfg.DisplayCurrency))
	}

	setupAPIV1Routes(r, cfg, services, rateLimiter)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)}
	if rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}
	chain = append(chain, ensureAccount(services.Account))
	v1 := r.Group("/api/v1", chain...)

	registerAccountRoutes(v1, services.Account, services.Address)
	registerRequestRoutes(v1, services.Coordinator, services.Workflow)
	registerBalanceRoutes(v1, services.Balance, services.Coordinator, services.Rate, cfg.DisplayCurrency)
	registerInvestmentRoutes(v1, services.Investment)
	registerAdminRoutes(v1, services)
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
