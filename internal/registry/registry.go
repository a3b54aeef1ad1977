// Package registry binds collection names to the active backend's adapters
// and hosts the cross-collection operations the console needs.
package registry

import (
	"context"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// OrderDetails is the denormalized composite read for one order. Payment and
// Customer are nil when the referenced record is absent.
type OrderDetails struct {
	Order    storage.Record   `json:"order"`
	Items    []storage.Record `json:"items"`
	Payment  storage.Record   `json:"payment,omitempty"`
	Customer storage.Record   `json:"customer,omitempty"`
}

// Registry maps collection names to a single backend's collections.
type Registry struct {
	backend string
	cols    map[string]storage.Collection
	sqlDB   *gorm.DB
	log     *logger.Logger
}

// Option tweaks registry construction.
type Option func(*Registry)

// WithSQL enables the relational join path for composite reads.
func WithSQL(db *gorm.DB) Option {
	return func(r *Registry) {
		r.sqlDB = db
	}
}

// WithLogger attaches the shared logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New builds a registry over the given collections. Every known collection
// must be present.
func New(backend string, cols map[string]storage.Collection, opts ...Option) (*Registry, error) {
	missing := []string{}
	for _, name := range storage.Collections {
		if cols[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal,
			"registry is missing collections: "+strings.Join(missing, ", "))
	}

	r := &Registry{backend: backend, cols: cols}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Backend names the storage backend this registry serves.
func (r *Registry) Backend() string {
	return r.backend
}

// Collection returns the named collection or a NOT_FOUND error for names
// outside the known set.
func (r *Registry) Collection(name string) (storage.Collection, error) {
	col, ok := r.cols[name]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown collection "+name)
	}
	return col, nil
}

// OrderWithDetails assembles the order, its line items, and the referenced
// payment and customer. An absent order yields (nil, nil).
func (r *Registry) OrderWithDetails(ctx context.Context, orderID string) (*OrderDetails, error) {
	if r.sqlDB != nil {
		details, err := r.joinedOrder(ctx, orderID)
		if err == nil {
			return details, nil
		}
		if r.log != nil {
			r.log.Error(ctx, "join query failed, composing order details per collection", err)
		}
	}
	return r.composeOrder(ctx, orderID)
}

// composeOrder builds the details from single-collection calls. It works
// against any backend.
func (r *Registry) composeOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	order, err := r.cols[storage.CollectionOrders].FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	items, err := r.cols[storage.CollectionOrderItems].Find(ctx, storage.Query{"order_id": orderID})
	if err != nil {
		return nil, err
	}

	payment, err := r.cols[storage.CollectionPayments].FindOne(ctx, storage.Query{"order_id": orderID})
	if err != nil {
		return nil, err
	}

	var customer storage.Record
	if customerID, ok := order["customer_id"].(string); ok && customerID != "" {
		customer, err = r.cols[storage.CollectionCustomers].FindByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
	}

	return &OrderDetails{Order: order, Items: items, Payment: payment, Customer: customer}, nil
}

// DeleteOrder removes the order and then its line items. The cascade is not
// transactional: a failed item delete leaves earlier deletes in place and is
// reported alongside any others.
func (r *Registry) DeleteOrder(ctx context.Context, orderID string) (storage.Record, error) {
	order, err := r.cols[storage.CollectionOrders].DeleteOne(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	items, err := r.cols[storage.CollectionOrderItems].Find(ctx, storage.Query{"order_id": orderID})
	if err != nil {
		return order, err
	}

	var errs error
	for _, item := range items {
		if _, err := r.cols[storage.CollectionOrderItems].DeleteOne(ctx, storage.RecordID(item)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return order, errs
}
