package rest

import (
	"net/http"

	"suitup-be/internal/logger"
	"suitup-be/internal/metrics"
	"suitup-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Tokens         middleware.TokenParser
	Limiter        *middleware.RateLimiter
	Metrics        *metrics.Metrics
	FrontendOrigin string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(middleware.Auth(cfg.Tokens))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}

	r.Get("/health", h.health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})

	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.ListBrands)
		r.Post("/", h.adminOnly(h.CreateBrand))
		r.Delete("/{brandId}", h.adminOnly(h.DeleteBrand))
		r.Get("/{brandId}/products", h.BrandProducts)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.adminOnly(h.CreateProduct))
		r.Get("/{productId}", h.GetProduct)
		r.Delete("/{productId}", h.adminOnly(h.DeleteProduct))
		r.Patch("/{productId}", h.adminOnly(h.SetStock))
		r.Post("/{productId}/buy", h.authenticated(h.BuyProduct))
	})

	// The order service resolves the caller and enforces ownership and
	// admin rights itself.
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.ListMyOrders)
		r.Get("/{orderId}", h.GetOrder)
	})
	r.Get("/admin/orders", h.ListAllOrders)
	r.Patch("/admin/orders", h.UpdateOrderStatus)

	r.Post("/upload", h.adminOnly(h.Upload))
	r.Post("/chatbot", h.Chat)
	r.Post("/chatbot/stream", h.ChatStream)
	r.Post("/tryon", h.TryOn)

	return otelhttp.NewHandler(r, "suitup-be",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
