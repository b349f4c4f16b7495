package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/kbeauty-storefront/api/controllers"
	"github.com/angelmondragon/kbeauty-storefront/api/middleware"
	"github.com/angelmondragon/kbeauty-storefront/internal/cart"
	"github.com/angelmondragon/kbeauty-storefront/internal/newsletter"
	"github.com/angelmondragon/kbeauty-storefront/internal/orders"
	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/angelmondragon/kbeauty-storefront/internal/wishlist"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth/session"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/redis"
)

type sessionManager interface {
	session.RevocationChecker
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// RouterParams groups everything the HTTP surface is wired to.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    sessionManager
	Idempotency redis.IdempotencyStore
	RateLimiter redis.RateLimiter
	Readiness   map[string]controllers.Pinger
	Metrics     http.Handler

	Catalog     product.Service
	Carts       *cart.Registry
	CartService cart.Service
	Wishlists   *wishlist.Registry
	Orders      orders.Service
	Newsletter  newsletter.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness, logg))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	idempotent := middleware.Idempotency(p.Idempotency, logg)
	newsletterLimit := middleware.RateLimit(middleware.NewsletterPolicy(cfg.Newsletter), p.RateLimiter, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.Auth, p.Sessions, logg))

		r.Get("/home", controllers.Home(p.Catalog, logg))
		r.Get("/categories", controllers.Categories(p.Catalog, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.Catalog, logg))
			r.Get("/{productId}", controllers.GetProduct(p.Catalog, logg))
			r.Post("/{productId}/selection", controllers.ResolveSelection(p.Catalog, logg))
		})
		r.With(newsletterLimit, idempotent).Post("/newsletter/subscribe", controllers.Subscribe(p.Newsletter, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Auth, p.Sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.Carts, logg))
				r.With(idempotent).Post("/", controllers.AddToCart(p.CartService, logg))
				r.Patch("/{productId}", controllers.UpdateCartItem(p.Carts, logg))
				r.Delete("/{productId}", controllers.RemoveCartItem(p.Carts, logg))
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.GetWishlist(p.Wishlists, logg))
				r.Post("/{productId}/toggle", controllers.ToggleWishlist(p.Wishlists, logg))
				r.Put("/{productId}", controllers.AddToWishlist(p.Wishlists, logg))
				r.Delete("/{productId}", controllers.RemoveFromWishlist(p.Wishlists, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(p.Orders, logg))
				r.Get("/{orderId}", controllers.GetOrder(p.Orders, logg))
				r.Get("/{orderId}/invoice.pdf", controllers.OrderInvoice(p.Orders, logg))
			})
			r.Post("/session/logout", controllers.Logout(p.Sessions, logg, p.Carts, p.Wishlists))
		})
	})

	return r
}
