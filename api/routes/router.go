package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salesdeskhq/salesdesk-backend/api/controllers"
	"github.com/salesdeskhq/salesdesk-backend/api/middleware"
	"github.com/salesdeskhq/salesdesk-backend/internal/cashflow"
	"github.com/salesdeskhq/salesdesk-backend/internal/customers"
	"github.com/salesdeskhq/salesdesk-backend/internal/products"
	"github.com/salesdeskhq/salesdesk-backend/internal/sales"
	"github.com/salesdeskhq/salesdesk-backend/pkg/config"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
	"github.com/salesdeskhq/salesdesk-backend/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Registry  *prometheus.Registry
	Customers customers.Service
	Products  products.Service
	Sales     sales.Service
	CashFlow  cashflow.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if d.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(d.Registry)
	}

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(d.Customers, d.Logger))
			r.Post("/", controllers.CustomerCreate(d.Customers, d.Logger))
			r.Get("/{customerId}", controllers.CustomerDetail(d.Customers, d.Logger))
			r.Put("/{customerId}", controllers.CustomerUpdate(d.Customers, d.Logger))
			r.Delete("/{customerId}", controllers.CustomerDelete(d.Customers, d.Logger))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Products, d.Logger))
			r.Get("/{productId}", controllers.ProductDetail(d.Products, d.Logger))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SaleList(d.Sales, d.Logger))
			r.Post("/", controllers.SaleCreate(d.Sales, d.Logger))
			r.Get("/{saleId}", controllers.SaleDetail(d.Sales, d.Logger))
		})

		r.Route("/cashflow", func(r chi.Router) {
			r.Get("/", controllers.CashFlowSummary(d.CashFlow, d.Logger))
			r.Post("/", controllers.CashFlowCreate(d.CashFlow, d.Logger))
			r.Get("/latest", controllers.CashFlowLatest(d.CashFlow, d.Logger))
			r.Get("/{cashflowId}", controllers.CashFlowByID(d.CashFlow, d.Logger))
		})
	})

	return r
}
