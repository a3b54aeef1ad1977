package registry

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/memory"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func newMemoryRegistry(t *testing.T) *Registry {
	t.Helper()

	cols := map[string]storage.Collection{}
	for _, name := range storage.Collections {
		cols[name] = memory.NewCollection(name, nil)
	}
	reg, err := New("memory", cols)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func mustInsert(t *testing.T, reg *Registry, collection string, rec storage.Record) storage.Record {
	t.Helper()

	col, err := reg.Collection(collection)
	if err != nil {
		t.Fatalf("collection %s: %v", collection, err)
	}
	inserted, err := col.InsertOne(context.Background(), rec)
	if err != nil {
		t.Fatalf("insert into %s: %v", collection, err)
	}
	return inserted
}

func TestCollectionLookup(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	for _, name := range storage.Collections {
		if _, err := reg.Collection(name); err != nil {
			t.Fatalf("known collection %s rejected: %v", name, err)
		}
	}

	_, err := reg.Collection("unicorns")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown collection, got %v", err)
	}
}

func TestNewRejectsMissingCollections(t *testing.T) {
	t.Parallel()

	cols := map[string]storage.Collection{
		storage.CollectionProducts: memory.NewCollection("products", nil),
	}
	if _, err := New("memory", cols); err == nil {
		t.Fatal("expected construction to fail with collections missing")
	}
}

func TestOrderWithDetails(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	ctx := context.Background()

	customer := mustInsert(t, reg, storage.CollectionCustomers, storage.Record{
		"name": "Ada", "email": "ada@example.com",
	})
	order := mustInsert(t, reg, storage.CollectionOrders, storage.Record{
		"customer_id": storage.RecordID(customer), "status": "pending", "total_amount": 59.94,
	})
	orderID := storage.RecordID(order)

	mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{
		"order_id": orderID, "product_id": "p1", "quantity": 2, "price": 9.99, "subtotal": 19.98,
	})
	mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{
		"order_id": orderID, "product_id": "p2", "quantity": 4, "price": 9.99, "subtotal": 39.96,
	})
	mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{
		"order_id": "other-order", "product_id": "p3", "quantity": 1, "price": 5, "subtotal": 5,
	})
	mustInsert(t, reg, storage.CollectionPayments, storage.Record{
		"order_id": orderID, "amount": 59.94, "method": "paypal", "status": "completed",
	})

	details, err := reg.OrderWithDetails(ctx, orderID)
	if err != nil {
		t.Fatalf("order with details: %v", err)
	}
	if details == nil {
		t.Fatal("expected details for existing order")
	}
	if storage.RecordID(details.Order) != orderID {
		t.Fatalf("wrong order: %v", details.Order)
	}
	if len(details.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(details.Items))
	}
	if details.Payment == nil || details.Payment["method"] != "paypal" {
		t.Fatalf("payment not joined: %v", details.Payment)
	}
	if details.Customer == nil || details.Customer["name"] != "Ada" {
		t.Fatalf("customer not joined: %v", details.Customer)
	}
}

func TestOrderWithDetailsAbsentOrder(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	details, err := reg.OrderWithDetails(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("absent order must not error: %v", err)
	}
	if details != nil {
		t.Fatalf("expected nil details, got %v", details)
	}
}

func TestOrderWithDetailsDanglingReferences(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	order := mustInsert(t, reg, storage.CollectionOrders, storage.Record{
		"customer_id": "ghost", "status": "pending", "total_amount": 10.0,
	})

	details, err := reg.OrderWithDetails(context.Background(), storage.RecordID(order))
	if err != nil {
		t.Fatalf("order with details: %v", err)
	}
	if details.Payment != nil {
		t.Fatalf("expected nil payment, got %v", details.Payment)
	}
	if details.Customer != nil {
		t.Fatalf("expected nil customer for dangling reference, got %v", details.Customer)
	}
	if len(details.Items) != 0 {
		t.Fatalf("expected no items, got %v", details.Items)
	}
}

func TestDeleteOrderCascades(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	ctx := context.Background()

	order := mustInsert(t, reg, storage.CollectionOrders, storage.Record{
		"customer_id": "c1", "status": "pending", "total_amount": 25.0,
	})
	orderID := storage.RecordID(order)

	mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{"order_id": orderID, "product_id": "p1", "quantity": 1, "price": 25, "subtotal": 25})
	mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{"order_id": orderID, "product_id": "p2", "quantity": 1, "price": 25, "subtotal": 25})
	keeper := mustInsert(t, reg, storage.CollectionOrderItems, storage.Record{"order_id": "other", "product_id": "p3", "quantity": 1, "price": 5, "subtotal": 5})

	deleted, err := reg.DeleteOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if deleted == nil || storage.RecordID(deleted) != orderID {
		t.Fatalf("cascade should return the removed order, got %v", deleted)
	}

	orders, _ := reg.Collection(storage.CollectionOrders)
	if got, err := orders.FindByID(ctx, orderID); err != nil || got != nil {
		t.Fatalf("order still present after cascade: %v, %v", got, err)
	}

	items, _ := reg.Collection(storage.CollectionOrderItems)
	remaining, err := items.Find(ctx, nil)
	if err != nil {
		t.Fatalf("find items: %v", err)
	}
	if len(remaining) != 1 || storage.RecordID(remaining[0]) != storage.RecordID(keeper) {
		t.Fatalf("cascade removed the wrong items: %v", remaining)
	}
}

func TestDeleteOrderAbsent(t *testing.T) {
	t.Parallel()

	reg := newMemoryRegistry(t)
	deleted, err := reg.DeleteOrder(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("absent order must not error: %v", err)
	}
	if deleted != nil {
		t.Fatalf("expected nil, got %v", deleted)
	}
}
