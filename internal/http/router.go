package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Products      *ProductHandler
	Cart          *CartHandler
	Orders        *OrderHandler
	Payments      *PaymentHandler
	Notifications *NotificationHandler
	Auth          *AuthHandler
	Analytics     *AnalyticsHandler
	Health        *HealthHandler
}

type RouterConfig struct {
	AdminToken         string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(h Handlers, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(LimitBody(cfg.MaxRequestBodySize))

	r.Get("/health", h.Health.Get)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/{id}", h.Products.Get)
			r.Post("/{id}/rating", h.Products.Rate)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items", h.Cart.UpdateQuantity)
			r.Delete("/items", h.Cart.RemoveItem)
			r.Post("/items/decrement", h.Cart.Decrement)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.Create)
			r.Get("/", h.Orders.ListByPhone)
			r.Get("/{id}", h.Orders.Get)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/intent", h.Payments.CreateIntent)
			r.Post("/verify", h.Payments.Verify)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/otp/send", h.Auth.SendOTP)
			r.Post("/otp/verify", h.Auth.VerifyOTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuth(cfg.AdminToken))

			r.Get("/orders", h.Orders.ListAll)
			r.Patch("/orders/{id}/status", h.Orders.UpdateStatus)

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Get("/unread-count", h.Notifications.UnreadCount)
				r.Post("/read-all", h.Notifications.MarkAllRead)
				r.Patch("/{id}/read", h.Notifications.SetRead)
			})

			r.Get("/analytics", h.Analytics.Get)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
