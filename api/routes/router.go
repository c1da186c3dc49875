package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yniverz/erp-rent-backend/api/controllers"
	"github.com/yniverz/erp-rent-backend/api/middleware"
	"github.com/yniverz/erp-rent-backend/internal/inventory"
	"github.com/yniverz/erp-rent-backend/internal/ledger"
	"github.com/yniverz/erp-rent-backend/internal/quotes"
	"github.com/yniverz/erp-rent-backend/pkg/config"
	"github.com/yniverz/erp-rent-backend/pkg/db"
	"github.com/yniverz/erp-rent-backend/pkg/logger"
	"github.com/yniverz/erp-rent-backend/pkg/metrics"
	"github.com/yniverz/erp-rent-backend/pkg/redis"
)

type Dependencies struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            *redis.Client
	InventoryService inventory.Service
	QuoteService     quotes.Service
	LedgerService    ledger.Service
	QuoteMetrics     *metrics.QuoteMetrics
	MetricsHandler   http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(deps.InventoryService, logg))
			r.Post("/", controllers.ItemCreate(deps.InventoryService, logg))
			r.Get("/payoff", controllers.ItemPayoffReport(deps.InventoryService, logg))
			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.ItemDetail(deps.InventoryService, logg))
				r.Patch("/", controllers.ItemUpdate(deps.InventoryService, logg))
				r.Delete("/", controllers.ItemDelete(deps.InventoryService, logg))
				r.Get("/availability", controllers.ItemAvailability(deps.InventoryService, logg))
				r.Post("/ownership-records", controllers.ItemAddOwnershipRecord(deps.InventoryService, logg))
				r.Delete("/ownership-records/{recordId}", controllers.ItemRemoveOwnershipRecord(deps.InventoryService, logg))
				r.Put("/components", controllers.ItemSetComponents(deps.InventoryService, logg))
			})
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.QuoteList(deps.QuoteService, logg))
			r.Post("/", controllers.QuoteCreate(deps.QuoteService, logg, deps.QuoteMetrics))
			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", controllers.QuoteDetail(deps.QuoteService, logg))
				r.Patch("/", controllers.QuoteUpdate(deps.QuoteService, logg))
				r.Delete("/", controllers.QuoteDelete(deps.QuoteService, logg))
				r.Get("/totals", controllers.QuoteTotals(deps.QuoteService, logg))
				r.Get("/revenue-events", controllers.QuoteRevenueEvents(deps.LedgerService, logg))
				r.Post("/lines", controllers.QuoteAddItemLine(deps.QuoteService, logg))
				r.Post("/lines/custom", controllers.QuoteAddCustomLine(deps.QuoteService, logg))
				r.Patch("/lines/{lineId}", controllers.QuoteUpdateLine(deps.QuoteService, logg))
				r.Delete("/lines/{lineId}", controllers.QuoteRemoveLine(deps.QuoteService, logg))
				r.Post("/finalize", controllers.QuoteFinalize(deps.QuoteService, logg, deps.QuoteMetrics))
				r.Post("/unfinalize", controllers.QuoteUnfinalize(deps.QuoteService, logg, deps.QuoteMetrics))
				r.Post("/perform", controllers.QuoteMarkPerformed(deps.QuoteService, logg, deps.QuoteMetrics))
				r.Post("/pay", controllers.QuotePay(deps.QuoteService, logg, deps.QuoteMetrics))
				r.Post("/unpay", controllers.QuoteUnpay(deps.QuoteService, logg, deps.QuoteMetrics))
			})
		})
	})

	return r
}
