package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/conn"
	"github.com/stockroomhq/stockroom-backend/internal/registry"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// NewRouter wires the console API: public health and login, then the
// token-protected collection CRUD surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	reg *registry.Registry,
	adminHash string,
	managers ...*conn.Manager,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, managers...))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", controllers.Login(cfg, adminHash, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/connection", controllers.ConnectionStatus(reg.Backend(), logg, managers...))
			r.Get("/orders/{id}/details", controllers.OrderDetails(reg, logg))

			r.Route("/{collection}", func(r chi.Router) {
				r.Get("/", controllers.ListRecords(reg, logg))
				r.Post("/", controllers.CreateRecord(reg, logg))
				r.Get("/{id}", controllers.GetRecord(reg, logg))
				r.Put("/{id}", controllers.UpdateRecord(reg, logg))
				r.Delete("/{id}", controllers.DeleteRecord(reg, logg))
			})
		})
	})

	return r
}
