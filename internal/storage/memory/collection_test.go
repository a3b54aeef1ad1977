package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/storagetest"
)

func TestCollectionContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Collection {
		return NewCollection("products", nil)
	})
}

func TestSeedRecordsGetIDs(t *testing.T) {
	t.Parallel()

	col := NewCollection("products", Fixtures()[storage.CollectionProducts])
	ctx := context.Background()

	all, err := col.Find(ctx, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected seeded records")
	}
	for _, rec := range all {
		if storage.RecordID(rec) == "" {
			t.Fatalf("seed record missing id: %v", rec)
		}
	}
}

func TestSeedIsCopiedFromFixtures(t *testing.T) {
	t.Parallel()

	seed := []storage.Record{{"name": "Widget", "stock": float64(3)}}
	col := NewCollection("products", seed)

	seed[0]["name"] = "Tampered"

	rec, err := col.FindOne(context.Background(), storage.Query{"stock": 3})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if rec == nil || rec["name"] != "Widget" {
		t.Fatalf("seed slice aliasing leaked into collection: %v", rec)
	}
}

func TestConcurrentWritersDoNotRace(t *testing.T) {
	t.Parallel()

	col := NewCollection("products", nil)
	ctx := context.Background()

	inserted, err := col.InsertOne(ctx, storage.Record{"name": "Widget", "stock": 0})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id := storage.RecordID(inserted)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = col.UpdateOne(ctx, id, storage.Patch{"stock": n})
			_, _ = col.Find(ctx, nil)
			_, _ = col.InsertOne(ctx, storage.Record{"name": "Extra"})
		}(i)
	}
	wg.Wait()

	n, err := col.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 17 {
		t.Fatalf("expected 17 records, got %d", n)
	}
}
