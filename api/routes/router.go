package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiffinworks/commerce-backend/api/controllers"
	"github.com/tiffinworks/commerce-backend/api/middleware"
	"github.com/tiffinworks/commerce-backend/internal/cart"
	"github.com/tiffinworks/commerce-backend/internal/catalog"
	"github.com/tiffinworks/commerce-backend/internal/pricing"
	"github.com/tiffinworks/commerce-backend/internal/session"
	"github.com/tiffinworks/commerce-backend/internal/uploads"
	"github.com/tiffinworks/commerce-backend/pkg/config"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
	"github.com/tiffinworks/commerce-backend/pkg/redis"
)

// Deps carries everything the router mounts. Nil optional members degrade
// the matching routes rather than panicking at wire-up.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	CatalogStore    *catalog.Store
	PricingEngine   *pricing.Engine
	SessionService  session.Service
	CartAssembler   *cart.Assembler
	UploadPipeline  *uploads.Pipeline
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	var idempotencyStore redis.IdempotencyStore
	var pinger redis.Pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		pinger = deps.Redis
	}
	r.Use(middleware.Idempotency(idempotencyStore, deps.Logger))

	r.Get("/healthz", controllers.HealthLive(deps.Config))
	r.Get("/readyz", controllers.HealthReady(deps.Config, deps.Logger, pinger))

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuGetCurrent(deps.CatalogStore, deps.PricingEngine, deps.Logger))
			r.Put("/", controllers.MenuPutBulk(deps.CatalogStore, deps.Logger))
			r.Delete("/", controllers.MenuDeleteAll(deps.CatalogStore, deps.Logger))
			r.Get("/{day}", controllers.MenuGetDay(deps.CatalogStore, deps.PricingEngine, deps.Logger))
			r.Put("/{day}", controllers.MenuPutDay(deps.CatalogStore, deps.Logger))
			r.Delete("/{day}", controllers.MenuDeleteDay(deps.CatalogStore, deps.Logger))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Put("/thresholds", controllers.PricingReplaceThresholds(deps.PricingEngine, deps.Logger))
			r.Post("/thresholds", controllers.PricingUpsertThreshold(deps.PricingEngine, deps.Logger))
		})

		r.Post("/session/exchange", controllers.SessionExchange(deps.SessionService, deps.Logger))
		r.Post("/cart", controllers.CartSubmit(deps.CartAssembler, deps.Logger))
		r.Post("/uploads", controllers.UploadFile(deps.UploadPipeline, deps.Logger))
	})

	return r
}
