package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/controllers"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/middleware"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/auth"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/complaints"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/delivery"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/geocode"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ledger"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/orders"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/products"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ratings"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/users"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/auth/session"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Pingers  map[string]controllers.Pinger

	Sessions session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Products        products.Service
	Orders          orders.Service
	Delivery        delivery.Service
	Ledger          ledger.Service
	Complaints      complaints.Service
	Ratings         ratings.Service
	Geocode         geocode.Service
	Users           users.Service
}

// NewRouter assembles the API route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Pingers))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListCatalog(p.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(p.Products, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Post("/v1/auth/logout", controllers.AuthLogout(p.AuthService, logg))
		r.Get("/v1/geocode/reverse", controllers.GeocodeReverse(p.Geocode, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole("customer", logg))
			r.Post("/", controllers.PlaceOrder(p.Orders, logg))
			r.Get("/", controllers.ListOrders(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
			r.Get("/{orderId}/tracking", controllers.TrackOrder(p.Delivery, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(p.Orders, logg))
			r.Post("/{orderId}/rating", controllers.RateOrder(p.Ratings, logg))
		})

		r.Route("/v1/complaints", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("customer", logg))
				r.Post("/", controllers.SubmitComplaint(p.Complaints, logg))
				r.Get("/", controllers.ListCustomerComplaints(p.Complaints, logg))
			})
			r.With(middleware.RequireRole("vendor", logg)).
				Post("/{complaintId}/reply", controllers.ReplyComplaint(p.Complaints, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Post("/{complaintId}/close", controllers.CloseComplaint(p.Complaints, logg))
		})

		r.Route("/v1/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole("vendor", logg))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListVendorProducts(p.Products, logg))
				r.Post("/", controllers.CreateProduct(p.Products, logg))
				r.Patch("/{productId}", controllers.UpdateProduct(p.Products, logg))
				r.Delete("/{productId}", controllers.DeactivateProduct(p.Products, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListVendorOrders(p.Orders, logg))
				r.Post("/{orderId}/items/decision", controllers.ItemsDecision(p.Orders, logg))
			})
		})

		r.Route("/v1/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole("delivery", logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListAgentOrders(p.Orders, logg))
				r.Post("/{orderId}/pickup", controllers.AgentPickup(p.Delivery, logg))
				r.Post("/{orderId}/dispatch", controllers.AgentDispatch(p.Delivery, logg))
				r.Post("/{orderId}/confirm", controllers.AgentConfirm(p.Delivery, logg))
				r.Post("/{orderId}/resend-otp", controllers.AgentResendOTP(p.Delivery, logg))
			})
			r.Put("/location", controllers.AgentUpdateLocation(p.Delivery, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/ledger", controllers.ListLedger(p.Ledger, logg))
			r.Post("/ledger/settle", controllers.SettleLedger(p.Ledger, logg))
			r.Get("/revenue", controllers.ListRevenue(p.Ledger, logg))
			r.Get("/complaints", controllers.ListComplaints(p.Complaints, logg))
			r.Post("/agents/{userId}/verify", controllers.VerifyAgent(p.Users, logg))
		})
	})

	return r
}
