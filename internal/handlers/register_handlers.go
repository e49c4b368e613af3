package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/wallet_ledger/cmd/docs"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/middleware"
	"github.com/SscSPs/wallet_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// metricsHandler may be nil when metrics are not exported.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	metricsHandler http.Handler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	authLimit := rateLimitOrNothing(cfg.AuthRateLimit)
	moneyLimit := rateLimitOrNothing(cfg.MoneyRateLimit)

	public := r.Group("/api/v1")
	RegisterAuthRoutes(public, services.User, services.Token, authLimit...)

	// Everything else acts on the identity in the access token.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	registerUserRoutes(v1, services.User)
	RegisterWalletRoutes(v1, services.Wallet, moneyLimit...)

	setupSwaggerRoutes(r, cfg)
}

// rateLimitOrNothing builds a limiter middleware, or none if the rate is unset or invalid.
func rateLimitOrNothing(formatted string) []gin.HandlerFunc {
	if formatted == "" {
		return nil
	}
	lim, err := middleware.NewMemoryLimiter(formatted)
	if err != nil {
		slog.Warn("Invalid rate limit, limiting disabled", slog.String("rate", formatted), slog.String("error", err.Error()))
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(lim)}
}

// chain returns middleware followed by h in a fresh slice.
func chain(mws []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mws)+1)
	out = append(out, mws...)
	return append(out, h)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
