package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/internal/registry"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// OrderDetails serves GET /api/orders/{id}/details, the denormalized
// order + items + payment + customer view.
func OrderDetails(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := reg.OrderWithDetails(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if details == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, details)
	}
}
