package controllers

import (
	"net/http"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/internal/conn"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only while no backend manager sits in the error
// state.
func HealthReady(cfg *config.Config, logg *logger.Logger, managers ...*conn.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)

		backends := map[string]string{}
		healthy := true
		for _, m := range managers {
			state := m.State()
			backends[m.Backend()] = string(state)
			if state == conn.StateError {
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "storage backend unavailable").WithDetails(backends))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "backends": backends})
	}
}
