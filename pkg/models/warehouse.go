package models

import (
	"time"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Warehouse is a physical stock location.
type Warehouse struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (w Warehouse) Validate() error {
	if w.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid warehouse").
			WithDetails(map[string]string{"name": "is required"})
	}
	return nil
}
