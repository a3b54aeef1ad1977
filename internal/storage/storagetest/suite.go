// Package storagetest holds the collection contract suite every backend
// adapter must pass. Adapter packages run it against a fresh collection so
// the three implementations cannot drift apart.
package storagetest

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
)

// Factory returns a fresh, empty collection for one subtest.
type Factory func(t *testing.T) storage.Collection

// Run exercises the full collection contract against the factory's adapter.
func Run(t *testing.T, newCollection Factory) {
	t.Helper()

	t.Run("InsertThenFindByID", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{
			"name": "Widget", "price": 9.99, "category": "Tools", "stock": 10,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)
		if id == "" {
			t.Fatal("expected a non-empty assigned id")
		}

		found, err := col.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find by id: %v", err)
		}
		if found == nil {
			t.Fatal("inserted record not found")
		}
		if found["name"] != "Widget" || found["category"] != "Tools" {
			t.Fatalf("round trip mismatch: %v", found)
		}
		if !storage.Matches(found, storage.Query{"price": 9.99, "stock": 10}) {
			t.Fatalf("numeric fields lost in round trip: %v", found)
		}
	})

	t.Run("InsertIgnoresCallerSuppliedID", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{
			"id": "chosen-by-caller", "name": "Widget",
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)
		if id == "" || id == "chosen-by-caller" {
			t.Fatalf("insert must mint its own id, got %q", id)
		}

		rec, err := col.FindByID(ctx, "chosen-by-caller")
		if err != nil {
			t.Fatalf("find by id: %v", err)
		}
		if rec != nil {
			t.Fatalf("caller-chosen id must not be addressable: %v", rec)
		}
	})

	t.Run("InsertThenUpdateScenario", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{
			"name": "Widget", "price": 9.99, "category": "Tools", "stock": 10,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)

		updated, err := col.UpdateOne(ctx, id, storage.Patch{"stock": 7})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated == nil {
			t.Fatal("update returned absent for existing id")
		}
		if !storage.Matches(updated, storage.Query{"stock": 7}) {
			t.Fatalf("expected stock 7, got %v", updated["stock"])
		}
		if updated["name"] != "Widget" {
			t.Fatalf("unpatched field changed: %v", updated["name"])
		}
		if storage.RecordID(updated) != id {
			t.Fatalf("id changed on update: %v", updated)
		}
	})

	t.Run("PatchNeverChangesID", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)

		updated, err := col.UpdateOne(ctx, id, storage.Patch{"id": "forged", "name": "Gadget"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if storage.RecordID(updated) != id {
			t.Fatalf("patch with id key must not change the id: %v", updated)
		}
		if got, err := col.FindByID(ctx, id); err != nil || got == nil || got["name"] != "Gadget" {
			t.Fatalf("patched field missing after update: %v, %v", got, err)
		}
	})

	t.Run("DeleteRemovesAndReturns", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		first, err := col.InsertOne(ctx, storage.Record{"name": "A"})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := col.InsertOne(ctx, storage.Record{"name": "B"}); err != nil {
			t.Fatalf("insert: %v", err)
		}

		before, err := col.Count(ctx, nil)
		if err != nil {
			t.Fatalf("count: %v", err)
		}

		id := storage.RecordID(first)
		deleted, err := col.DeleteOne(ctx, id)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if deleted == nil || deleted["name"] != "A" {
			t.Fatalf("delete should return the removed record, got %v", deleted)
		}

		if got, err := col.FindByID(ctx, id); err != nil || got != nil {
			t.Fatalf("deleted record still visible: %v, %v", got, err)
		}

		after, err := col.Count(ctx, nil)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if after != before-1 {
			t.Fatalf("count should drop by exactly 1: before=%d after=%d", before, after)
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{"name": "A"})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)

		if _, err := col.DeleteOne(ctx, id); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		again, err := col.DeleteOne(ctx, id)
		if err != nil {
			t.Fatalf("second delete must not error: %v", err)
		}
		if again != nil {
			t.Fatalf("second delete must return absent, got %v", again)
		}
	})

	t.Run("NotFoundIsAbsentNotError", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		if got, err := col.FindByID(ctx, "nonexistent"); err != nil || got != nil {
			t.Fatalf("FindByID on empty collection: %v, %v", got, err)
		}
		if got, err := col.FindOne(ctx, storage.Query{"name": "nope"}); err != nil || got != nil {
			t.Fatalf("FindOne without match: %v, %v", got, err)
		}
		if got, err := col.UpdateOne(ctx, "nonexistent", storage.Patch{"name": "x"}); err != nil || got != nil {
			t.Fatalf("UpdateOne on missing id: %v, %v", got, err)
		}
	})

	t.Run("FindFiltersByEquality", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		for _, rec := range []storage.Record{
			{"name": "A", "category": "Tools", "stock": 5},
			{"name": "B", "category": "Tools", "stock": 9},
			{"name": "C", "category": "Paint", "stock": 5},
		} {
			if _, err := col.InsertOne(ctx, rec); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}

		tools, err := col.Find(ctx, storage.Query{"category": "Tools"})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(tools) != 2 {
			t.Fatalf("expected 2 tools, got %d", len(tools))
		}

		both, err := col.Find(ctx, storage.Query{"category": "Tools", "stock": 5})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(both) != 1 || both[0]["name"] != "A" {
			t.Fatalf("ANDed query mismatch: %v", both)
		}

		all, err := col.Find(ctx, nil)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("empty query should return everything, got %d", len(all))
		}

		n, err := col.Count(ctx, storage.Query{"stock": 5})
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected count 2, got %d", n)
		}
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		inserted, err := col.InsertOne(ctx, storage.Record{"name": "Widget", "stock": 10})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := storage.RecordID(inserted)

		inserted["name"] = "Tampered"

		found, err := col.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find by id: %v", err)
		}
		if found["name"] != "Widget" {
			t.Fatal("mutating a returned record must not affect the stored value")
		}

		found["name"] = "AlsoTampered"
		again, err := col.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find by id: %v", err)
		}
		if again["name"] != "Widget" {
			t.Fatal("stored value corrupted by caller-side mutation")
		}
	})

	t.Run("ReinsertWithStrippedIDs", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		ids := map[string]bool{}
		for _, name := range []string{"A", "B"} {
			rec, err := col.InsertOne(ctx, storage.Record{"name": name})
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			ids[storage.RecordID(rec)] = true
		}

		all, err := col.Find(ctx, nil)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		for _, rec := range all {
			delete(rec, storage.IDField)
			reinserted, err := col.InsertOne(ctx, rec)
			if err != nil {
				t.Fatalf("reinsert: %v", err)
			}
			newID := storage.RecordID(reinserted)
			if newID == "" || ids[newID] {
				t.Fatalf("reinsert must produce a fresh distinct id, got %q", newID)
			}
			ids[newID] = true
		}

		n, err := col.Count(ctx, nil)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 4 {
			t.Fatalf("expected 4 records after reinsert, got %d", n)
		}
	})

	t.Run("FindOneIsDeterministic", func(t *testing.T) {
		col := newCollection(t)
		ctx := context.Background()

		for _, name := range []string{"A", "B", "C"} {
			if _, err := col.InsertOne(ctx, storage.Record{"name": name, "category": "x"}); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}

		first, err := col.FindOne(ctx, storage.Query{"category": "x"})
		if err != nil {
			t.Fatalf("find one: %v", err)
		}
		if first == nil {
			t.Fatal("expected a match")
		}
		for i := 0; i < 5; i++ {
			again, err := col.FindOne(ctx, storage.Query{"category": "x"})
			if err != nil {
				t.Fatalf("find one: %v", err)
			}
			if storage.RecordID(again) != storage.RecordID(first) {
				t.Fatalf("FindOne order not deterministic: %v vs %v", again, first)
			}
		}
	})
}
