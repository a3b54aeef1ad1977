package controllers

import (
	"net/http"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/internal/conn"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type connectionStatus struct {
	Backend   string `json:"backend"`
	State     string `json:"state"`
	LastError string `json:"last_error,omitempty"`
}

// ConnectionStatus reports the lifecycle state of every backend manager.
func ConnectionStatus(active string, logg *logger.Logger, managers ...*conn.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := make([]connectionStatus, 0, len(managers))
		for _, m := range managers {
			status := connectionStatus{
				Backend: m.Backend(),
				State:   string(m.State()),
			}
			if err := m.LastError(); err != nil {
				status.LastError = err.Error()
			}
			statuses = append(statuses, status)
		}
		responses.WriteSuccess(w, map[string]any{
			"active":      active,
			"connections": statuses,
		})
	}
}
