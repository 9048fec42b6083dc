package httpapi

import (
	"net/http"

	"party-on-delivery/internal/catalog"
	"party-on-delivery/internal/config"
	"party-on-delivery/internal/http/handlers"
	"party-on-delivery/internal/middleware"
	"party-on-delivery/internal/payments"
	"party-on-delivery/internal/queue"
	"party-on-delivery/internal/session"
	"party-on-delivery/internal/storage"
	"party-on-delivery/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Deps struct {
	DB       *pgxpool.Pool
	Logger   *zap.Logger
	Config   config.Config
	Queue    *queue.Client
	Sessions session.Store
	Payments *payments.Client
	Catalog  *catalog.Client
	Store    *storage.ObjectStore
	WS       *ws.Server
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(deps.Logger))

	cfg := deps.Config
	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Session-Token",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		DB:       deps.DB,
		Logger:   deps.Logger,
		Config:   cfg,
		Queue:    deps.Queue,
		Sessions: deps.Sessions,
		Payments: deps.Payments,
		Catalog:  deps.Catalog,
		Store:    deps.Store,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.CartAdd)
		r.Put("/cart/items", h.CartSetQuantity)
		r.Delete("/cart/items", h.CartRemove)
		r.Delete("/cart", h.CartEmpty)

		r.Get("/checkout", h.GetCheckoutState)
		r.Post("/checkout/datetime", h.ConfirmDateTime)
		r.Post("/checkout/address", h.ConfirmAddress)
		r.Post("/checkout/customer", h.ConfirmCustomer)
		r.Post("/checkout/edit/{step}", h.EditStep)
		r.Post("/checkout/add-to-order", h.SetAddToOrder)
		r.Post("/checkout/group-order", h.SetGroupOrder)
		r.Post("/checkout/payment-intent", h.CreatePaymentIntent)
		r.Post("/checkout/complete", h.CompleteCheckout)

		r.Post("/discounts", h.ApplyDiscount)
		r.Delete("/discounts", h.RemoveDiscount)

		r.Post("/pricing/quote", h.PricingQuote)
		r.Get("/delivery/quote", h.PublicDeliveryQuote)

		r.Get("/orders/{orderNumber}", h.PublicOrderDetail)

		r.Get("/group-order/{token}", h.GroupOrderResolve)
		r.Post("/group-order/{token}/join", h.GroupOrderJoin)
		r.Post("/group-order/decline", h.GroupOrderDecline)

		r.Get("/collections/{handle}", h.PublicCollection)
		r.Get("/variations/{slug}", h.PublicVariation)

		r.Get("/geocode/search", h.PublicAddressSearch)
		r.Get("/geocode/reverse", h.PublicReverseGeocode)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.DB, cfg.JWTSecret))

			r.Get("/me", h.AdminMe)

			r.Get("/orders", h.AdminOrdersList)
			r.Get("/orders/{id}", h.AdminOrderDetail)
			r.Get("/orders/{id}/receipt", h.AdminOrderReceiptPDF)

			r.Get("/variations", h.AdminVariationsList)
			r.Post("/variations", h.AdminVariationCreate)
			r.Put("/variations/{id}", h.AdminVariationUpdate)
			r.Delete("/variations/{id}", h.AdminVariationDelete)
			r.Post("/variations/{id}/logo", h.AdminVariationUploadLogo)
		})
	})

	if deps.WS != nil {
		r.Get("/ws/public/group-order", deps.WS.PublicGroupOrderWS)
	}

	return r
}
