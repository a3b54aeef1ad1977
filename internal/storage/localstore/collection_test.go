package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/storagetest"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestCollectionContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Collection {
		col, err := NewCollection(context.Background(), openTestStore(t), "test_", "products")
		if err != nil {
			t.Fatalf("new collection: %v", err)
		}
		return col
	})
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	col, err := NewCollection(ctx, store, "stockroom_", "products")
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	inserted, err := col.InsertOne(ctx, storage.Record{"name": "Widget", "price": 9.99, "stock": 10})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id := storage.RecordID(inserted)
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	col2, err := NewCollection(ctx, reopened, "stockroom_", "products")
	if err != nil {
		t.Fatalf("reload collection: %v", err)
	}

	found, err := col2.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id after reopen: %v", err)
	}
	if found == nil || found["name"] != "Widget" {
		t.Fatalf("record lost across reopen: %v", found)
	}
	if !storage.Matches(found, storage.Query{"price": 9.99, "stock": 10}) {
		t.Fatalf("numeric fields lost across reopen: %v", found)
	}
}

func TestSnapshotStoresNativeKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	col, err := NewCollection(ctx, store, "stockroom_", "products")
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	inserted, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	native, err := store.Load(ctx, "stockroom_products")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if len(native) != 1 {
		t.Fatalf("expected one snapshot record, got %d", len(native))
	}
	if native[0]["_id"] != storage.RecordID(inserted) {
		t.Fatalf("snapshot should store the native _id key: %v", native[0])
	}
	if _, ok := native[0]["id"]; ok {
		t.Fatalf("snapshot must not carry the public id key: %v", native[0])
	}
}

func TestPersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	col, err := NewCollection(ctx, store, "stockroom_", "products")
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	// Closing the snapshot db makes every subsequent Save fail.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	rec, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
	if err == nil {
		t.Fatal("expected a persistence failure")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePersistence {
		t.Fatalf("expected PERSISTENCE_FAILURE, got %v", err)
	}
	if rec == nil {
		t.Fatal("failed snapshot must still report the applied record")
	}

	found, err := col.FindByID(ctx, storage.RecordID(rec))
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found["name"] != "Widget" {
		t.Fatalf("in-memory copy should stay authoritative: %v", found)
	}
}

func TestCorruptSlotSurfacesAsPersistenceFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.db.Exec(`INSERT INTO slots(name, payload) VALUES (?, ?)`, "stockroom_products", []byte("{not json")).Error; err != nil {
		t.Fatalf("seed corrupt slot: %v", err)
	}

	_, err := NewCollection(ctx, store, "stockroom_", "products")
	if err == nil {
		t.Fatal("expected corrupt snapshot to fail construction")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePersistence {
		t.Fatalf("expected PERSISTENCE_FAILURE, got %v", err)
	}
}
