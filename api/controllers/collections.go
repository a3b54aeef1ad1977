package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/registry"
	"github.com/stockroomhq/stockroom-backend/internal/storage"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/models"
)

// ListRecords serves GET /api/{collection}. Query parameters become equality
// filters.
func ListRecords(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, err := reg.Collection(chi.URLParam(r, "collection"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recs, err := col.Find(r.Context(), validators.QueryFilters(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recs)
	}
}

// GetRecord serves GET /api/{collection}/{id}.
func GetRecord(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, err := reg.Collection(chi.URLParam(r, "collection"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := col.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rec == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "record not found"))
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// CreateRecord serves POST /api/{collection}. The body is validated against
// the collection's entity rules before it is stored.
func CreateRecord(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "collection")
		col, err := reg.Collection(name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body, err := validators.DecodeRecordBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := models.ValidateRecord(name, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := col.InsertOne(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rec)
	}
}

// UpdateRecord serves PUT /api/{collection}/{id} with a partial patch. The
// record as it would look after the merge is validated against the entity
// rules, so a patch cannot push a stored record outside them (negative
// stock, bad status, ...).
func UpdateRecord(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "collection")
		col, err := reg.Collection(name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch, err := validators.DecodeRecordBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := col.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if current == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "record not found"))
			return
		}
		merged := storage.Clone(current)
		storage.Merge(merged, patch)
		if err := models.ValidateRecord(name, merged); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := col.UpdateOne(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rec == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "record not found"))
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// DeleteRecord serves DELETE /api/{collection}/{id}. Deleting an order
// cascades to its line items.
func DeleteRecord(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "collection")
		id := chi.URLParam(r, "id")

		var rec storage.Record
		var err error
		if name == storage.CollectionOrders {
			rec, err = reg.DeleteOrder(r.Context(), id)
		} else {
			var col storage.Collection
			col, err = reg.Collection(name)
			if err == nil {
				rec, err = col.DeleteOne(r.Context(), id)
			}
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rec == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "record not found"))
			return
		}
		responses.WriteSuccess(w, rec)
	}
}
