package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/babycare/storefront/internal/auth"
	"github.com/babycare/storefront/internal/config"
	"github.com/babycare/storefront/internal/db"
	httpx "github.com/babycare/storefront/internal/http"
	"github.com/babycare/storefront/internal/http/middlewares"
	"github.com/babycare/storefront/internal/observability"
	"github.com/babycare/storefront/internal/redisclient"
	"github.com/babycare/storefront/internal/repo/memory"
	"github.com/babycare/storefront/internal/repo/mongodb"
	"github.com/babycare/storefront/internal/repo/postgres"
	"github.com/babycare/storefront/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type storePinger interface {
	Ping(ctx context.Context) error
}

// stores is the user/product pair for the configured backend.
type stores struct {
	users    services.UserStore
	products services.ProductStore
	ping     storePinger
	close    func(context.Context)
}

func main() {
	cfg, err := config.Load()

	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)

	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	st, err := openStores(cfg, prom)

	if err != nil {
		log.Error("store init failed", "driver", cfg.Store, "err", err)
		os.Exit(1)
	}

	var limiter middlewares.Limiter = middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	var rdb *redisclient.Client

	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := config.WithTimeout(2 * time.Second)
		err = rdb.Ping(ctx)
		cancel()

		if err != nil {
			log.Warn("redis unreachable, auth rate limiting fails open until it recovers", "addr", cfg.RedisAddr, "err", err)
		}

		limiter = redisclient.NewWindowLimiter(rdb, "storefront:ratelimit", cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	tokens := auth.NewManager(cfg.Secret(), cfg.TokenTTL.Duration())

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Auth:     services.NewAuthService(st.users, tokens, prom),
		Catalog:  services.NewCatalogService(st.products),
		Tokens:   tokens,
		Store:    st.ping,
		Prom:     prom,
		Gatherer: reg,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		st.close(ctx)

		if rdb != nil {
			_ = rdb.Close()
		}

		err = shutdownTracer(ctx)

		if err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStores(cfg config.Config, prom *observability.Prom) (stores, error) {
	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	switch cfg.Store {
	case config.DriverMongo:
		client, err := db.NewMongo(cfg.MongoURI)
		if err != nil {
			return stores{}, err
		}

		database := client.Database(cfg.MongoDB)

		err = db.EnsureMongoIndexes(ctx, database)
		if err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}

		products := mongodb.NewProductsRepo(database, prom)

		return stores{
			users:    mongodb.NewUsersRepo(database, prom),
			products: products,
			ping:     products,
			close:    func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return stores{}, err
		}

		err = db.EnsurePostgresSchema(ctx, pool)
		if err != nil {
			pool.Close()
			return stores{}, err
		}

		products := postgres.NewProductsRepo(pool, prom)

		return stores{
			users:    postgres.NewUsersRepo(pool, prom),
			products: products,
			ping:     products,
			close:    func(context.Context) { pool.Close() },
		}, nil

	default:
		products := memory.NewProductsRepo()

		return stores{
			users:    memory.NewUsersRepo(),
			products: products,
			ping:     products,
			close:    func(context.Context) {},
		}, nil
	}
}
