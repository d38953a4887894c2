package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvalderrama/tillpoint/api/controllers"
	"github.com/mvalderrama/tillpoint/api/middleware"
	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	checkoutsvc "github.com/mvalderrama/tillpoint/internal/checkout"
	"github.com/mvalderrama/tillpoint/internal/sales"
	"github.com/mvalderrama/tillpoint/pkg/config"
	"github.com/mvalderrama/tillpoint/pkg/db"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	catalogService catalog.Service,
	salesService sales.Service,
	cartManager *cart.Manager,
	checkoutService *checkoutsvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/categories", controllers.ListCategories(catalogService, logg))
			r.Get("/low-stock", controllers.ListLowStock(catalogService, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(catalogService, logg))
				r.Patch("/", controllers.UpdateProduct(catalogService, logg))
				r.Delete("/", controllers.DeleteProduct(catalogService, logg))
				r.Put("/stock", controllers.SetProductStock(catalogService, logg))
				r.Post("/stock/adjust", controllers.AdjustProductStock(catalogService, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartManager, logg))
			r.Delete("/", controllers.CartClear(cartManager, logg))
			r.Post("/items", controllers.CartAddItem(cartManager, catalogService, logg))
			r.Route("/items/{productId}", func(r chi.Router) {
				r.Put("/", controllers.CartSetQuantity(cartManager, logg))
				r.Post("/decrement", controllers.CartDecrementItem(cartManager, logg))
				r.Delete("/", controllers.CartRemoveItem(cartManager, logg))
			})
		})

		r.Post("/checkout", controllers.Checkout(cartManager, checkoutService, logg))

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(salesService, logg))
			r.Get("/{saleId}", controllers.GetSale(salesService, logg))
		})

		r.Get("/reports/summary", controllers.ReportSummary(catalogService, salesService, logg))
	})

	return r
}
