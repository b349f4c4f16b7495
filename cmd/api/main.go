package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/kbeauty-storefront/api/controllers"
	"github.com/angelmondragon/kbeauty-storefront/api/routes"
	"github.com/angelmondragon/kbeauty-storefront/internal/cart"
	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	"github.com/angelmondragon/kbeauty-storefront/internal/janitor"
	"github.com/angelmondragon/kbeauty-storefront/internal/newsletter"
	"github.com/angelmondragon/kbeauty-storefront/internal/orders"
	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/angelmondragon/kbeauty-storefront/internal/wishlist"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth/session"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	"github.com/angelmondragon/kbeauty-storefront/pkg/firestore"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
	"github.com/angelmondragon/kbeauty-storefront/pkg/redis"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(runCtx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(registry)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	upstreamClient, err := upstream.New(cfg.Upstream, metrics.NewUpstreamMetrics(registry), logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := upstreamClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing upstream client", err)
		}
	}()

	firestoreClient, err := firestore.NewClient(ctx, cfg.Firestore, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := firestoreClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing firestore", err)
		}
	}()

	revoker, err := session.NewRevoker(redisClient)
	if err != nil {
		return err
	}

	catalog, err := product.NewService(product.ServiceParams{
		Products:   product.NewRepository(upstreamClient, logg),
		Categories: categories.NewRepository(upstreamClient, logg),
		Cache:      redisClient,
		CacheKey:   redisClient.CatalogKey("snapshot"),
		Catalog:    cfg.Catalog,
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	carts := cart.NewRegistry(cart.NewRepository(upstreamClient, logg), cfg.Auth.RequireVerifiedEmail, storeMetrics, logg)
	cartService, err := cart.NewService(carts, catalog)
	if err != nil {
		return err
	}

	wishlistRepo, err := wishlist.NewFirestoreRepository(firestoreClient, logg)
	if err != nil {
		return err
	}
	wishlists := wishlist.NewRegistry(wishlist.RegistryParams{
		Repo:            wishlistRepo,
		RequireVerified: cfg.Auth.RequireVerifiedEmail,
		Metrics:         storeMetrics,
		Logger:          logg,
	})
	defer wishlists.Close()

	idleSweeper, err := janitor.NewService(janitor.ServiceParams{
		Logger: logg,
		Sweepers: map[string]janitor.Sweeper{
			"cart":     carts,
			"wishlist": wishlists,
		},
		IdleTTL:  cfg.Sessions.IdleTTL,
		Interval: cfg.Sessions.SweepInterval,
	})
	if err != nil {
		return err
	}
	go func() {
		if err := idleSweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(context.Background(), "idle sweeper stopped", err)
		}
	}()

	orderService, err := orders.NewService(orders.ServiceParams{
		Client: upstreamClient,
		Invoice: orders.InvoiceOptions{
			CompanyName:  cfg.Invoice.CompanyName,
			ContactEmail: cfg.Invoice.ContactEmail,
		},
		Logger: logg,
	})
	if err != nil {
		return err
	}

	newsletterService, err := newsletter.NewService(upstreamClient, logg)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		Sessions:    revoker,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Readiness: map[string]controllers.Pinger{
			"redis":     redisClient,
			"upstream":  upstreamClient,
			"firestore": firestoreClient,
		},
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Catalog:     catalog,
		Carts:       carts,
		CartService: cartService,
		Wishlists:   wishlists,
		Orders:      orderService,
		Newsletter:  newsletterService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
