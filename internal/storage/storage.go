// Package storage defines the collection contract every backend adapter
// satisfies: equality-filtered reads, id-addressed writes, and copy-on-return
// semantics so callers can never mutate stored state in place.
package storage

import (
	"context"

	"github.com/google/uuid"
)

// Record is a flat stored record. The public identifier lives under the
// IDField key as a string, assigned at insert and immutable afterwards.
type Record = map[string]any

// Query is an equality-only partial filter; keys absent from the query are
// wildcards. A nil or empty query matches every record.
type Query = map[string]any

// Patch is a shallow field merge applied by UpdateOne. A patch never changes
// the record id, even when it carries an IDField key.
type Patch = map[string]any

// IDField is the public identifier key on every record.
const IDField = "id"

// Collection names served by the registry.
const (
	CollectionProducts   = "products"
	CollectionCustomers  = "customers"
	CollectionOrders     = "orders"
	CollectionOrderItems = "order_items"
	CollectionPayments   = "payments"
	CollectionWarehouses = "warehouses"
	CollectionExpenses   = "expenses"
)

// Collections lists every collection name in registration order.
var Collections = []string{
	CollectionProducts,
	CollectionCustomers,
	CollectionOrders,
	CollectionOrderItems,
	CollectionPayments,
	CollectionWarehouses,
	CollectionExpenses,
}

// KnownCollection reports whether name is one of the served collections.
func KnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Collection is the uniform contract all backends implement. Every method is
// safe for concurrent use. Lookups that match nothing return (nil, nil);
// errors are reserved for backend failures, wrapped into the storage error
// taxonomy. Find and Count degrade to empty results on backend read failure;
// FindOne and FindByID surface the failure as CONNECTION_FAILURE so absent
// never masks an outage, and write paths fail strictly. InsertOne always
// mints a fresh id; an IDField key on the input is ignored.
type Collection interface {
	Find(ctx context.Context, query Query) ([]Record, error)
	FindOne(ctx context.Context, query Query) (Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	InsertOne(ctx context.Context, data Record) (Record, error)
	UpdateOne(ctx context.Context, id string, patch Patch) (Record, error)
	DeleteOne(ctx context.Context, id string) (Record, error)
	Count(ctx context.Context, query Query) (int64, error)
}

// NewID returns a fresh record identifier. Collisions are treated as
// negligible and not checked.
func NewID() string {
	return uuid.NewString()
}

// RecordID extracts the public id from a record, or "" when missing.
func RecordID(rec Record) string {
	if rec == nil {
		return ""
	}
	id, _ := rec[IDField].(string)
	return id
}
