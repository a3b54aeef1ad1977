package models

import (
	"time"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Customer is a buyer record. Email uniqueness is a console-level concern,
// not enforced by the storage layer.
type Customer struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Customer) Validate() error {
	if c.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid customer").
			WithDetails(map[string]string{"name": "is required"})
	}
	return nil
}
