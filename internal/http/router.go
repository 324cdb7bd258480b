package http

import (
	"log/slog"

	"github.com/babycare/storefront/internal/config"
	"github.com/babycare/storefront/internal/http/handlers"
	"github.com/babycare/storefront/internal/http/middlewares"
	"github.com/babycare/storefront/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const APIBasePath = "/api/v1"

type Deps struct {
	Log     *slog.Logger
	Config  config.Config
	Auth    handlers.Authenticator
	Catalog handlers.Catalog
	Tokens  middlewares.TokenVerifier
	Store   handlers.Pinger

	// optional
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Limiter  middlewares.Limiter
}

func NewRouter(d Deps) *gin.Engine {
	if !d.Config.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Recovery(d.Log))
	r.Use(otelgin.Middleware(d.Config.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))

	// health
	health := handlers.NewHealthHandler(d.Store, d.Log)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	productsHandler := handlers.NewProductsHandler(d.Catalog, d.Log, d.Config.ProductNotFoundMode)

	api := r.Group(APIBasePath)
	api.Use(middlewares.RequireJSON())

	authLimit := middlewares.RateLimit(d.Limiter, d.Log, middlewares.KeyByIP)
	api.POST("/register", authLimit, authHandler.Register)
	api.POST("/login", authLimit, authHandler.Login)

	create := []gin.HandlerFunc{productsHandler.CreateProduct}
	if d.Config.ProductsRequireAuth {
		authMW := middlewares.NewAuthMiddleware(d.Tokens)
		create = append([]gin.HandlerFunc{authMW.RequireAuth()}, create...)
	}

	api.POST("/products", create...)
	api.GET("/products", productsHandler.ListProducts)
	api.GET("/products/:id", productsHandler.GetProductByID)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	return r
}
