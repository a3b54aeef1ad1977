package models

import (
	"github.com/stockroomhq/stockroom-backend/internal/storage"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Validator is implemented by every entity in the data model.
type Validator interface {
	Validate() error
}

// ValidateRecord checks a generic record against the entity rules for its
// collection. Unknown collections are rejected.
func ValidateRecord(collection string, rec map[string]any) error {
	entity, err := entityFor(collection)
	if err != nil {
		return err
	}
	if err := FromRecord(rec, entity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed "+collection+" record")
	}
	return entity.Validate()
}

func entityFor(collection string) (Validator, error) {
	switch collection {
	case storage.CollectionProducts:
		return &Product{}, nil
	case storage.CollectionCustomers:
		return &Customer{}, nil
	case storage.CollectionOrders:
		return &Order{}, nil
	case storage.CollectionOrderItems:
		return &OrderItem{}, nil
	case storage.CollectionPayments:
		return &Payment{}, nil
	case storage.CollectionWarehouses:
		return &Warehouse{}, nil
	case storage.CollectionExpenses:
		return &Expense{}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown collection "+collection)
	}
}
