package localstore

import (
	"context"
	"sync"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/memory"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Collection keeps an authoritative in-memory copy and snapshots the full
// record list to its slot after every mutation. Snapshots store records
// under the native _id key; the public contract only ever sees id.
//
// A failed snapshot surfaces as a persistence failure, but the mutation that
// triggered it stays applied in memory: memory remains authoritative for the
// rest of the process lifetime.
type Collection struct {
	mem   *memory.Collection
	store *Store
	slot  string

	// mu serializes mutation+snapshot pairs so slot payloads never interleave.
	mu sync.Mutex
}

// NewCollection loads the slot's snapshot into a fresh in-memory copy.
func NewCollection(ctx context.Context, store *Store, slotPrefix, name string) (*Collection, error) {
	slot := slotPrefix + name

	native, err := store.Load(ctx, slot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading collection snapshot")
	}

	seed := make([]storage.Record, 0, len(native))
	for _, rec := range native {
		seed = append(seed, storage.FromNative(rec))
	}

	return &Collection{
		mem:   memory.NewCollection(name, seed),
		store: store,
		slot:  slot,
	}, nil
}

func (c *Collection) Find(ctx context.Context, query storage.Query) ([]storage.Record, error) {
	return c.mem.Find(ctx, query)
}

func (c *Collection) FindOne(ctx context.Context, query storage.Query) (storage.Record, error) {
	return c.mem.FindOne(ctx, query)
}

func (c *Collection) FindByID(ctx context.Context, id string) (storage.Record, error) {
	return c.mem.FindByID(ctx, id)
}

func (c *Collection) InsertOne(ctx context.Context, data storage.Record) (storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.mem.InsertOne(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := c.persist(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Collection) UpdateOne(ctx context.Context, id string, patch storage.Patch) (storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.mem.UpdateOne(ctx, id, patch)
	if err != nil || rec == nil {
		return rec, err
	}
	if err := c.persist(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Collection) DeleteOne(ctx context.Context, id string) (storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.mem.DeleteOne(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	if err := c.persist(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Collection) Count(ctx context.Context, query storage.Query) (int64, error) {
	return c.mem.Count(ctx, query)
}

func (c *Collection) persist(ctx context.Context) error {
	recs, err := c.mem.Find(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "snapshotting collection")
	}

	native := make([]storage.Record, 0, len(recs))
	for _, rec := range recs {
		native = append(native, storage.ToNative(rec))
	}

	if err := c.store.Save(ctx, c.slot, native); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "persisting collection snapshot")
	}
	return nil
}
