package httpapi

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/feedback"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/profile"
	"storefront-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Handler struct {
	users    user.Service
	products product.Service
	carts    cart.Service
	orders   order.Service
	profiles profile.Service
	feedback feedback.Service
}

func NewHandler(
	users user.Service,
	products product.Service,
	carts cart.Service,
	orders order.Service,
	profiles profile.Service,
	feedbackSvc feedback.Service,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		profiles: profiles,
		feedback: feedbackSvc,
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.Auth)
	r.Use(middleware.RateLimit)
	r.Use(logger.LoggingMiddleware)

	// Health also reports the broken-invariant counters; anything nonzero
	// here warrants a look at the logs.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]uint64{
			"cart_conflicts":  metrics.CartConflicts.Load(),
			"stock_conflicts": metrics.StockConflicts.Load(),
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{productID}", h.getProduct)
		r.Get("/{productID}/feedback", h.listProductFeedback)

		r.With(middleware.RequireAuth).Get("/{productID}/can-review", h.canReview)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{itemID}", h.updateCartItem)
			r.Delete("/items/{itemID}", h.removeCartItem)
			r.Post("/abandon", h.abandonCart)
			r.Post("/checkout", h.checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/{orderID}", h.getOrder)
			r.Post("/{orderID}/profile", h.supplyProfile)
			r.Post("/{orderID}/capture", h.capturePayment)
			r.Post("/{orderID}/status", h.advanceStatus)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.listProfiles)
			r.Post("/", h.createProfile)
			r.Delete("/{profileID}", h.deleteProfile)
			r.Post("/{profileID}/default", h.setDefaultProfile)
		})

		r.Post("/feedback", h.createFeedback)
	})

	return r
}
