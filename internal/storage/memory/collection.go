// Package memory implements the collection contract over a mutex-guarded
// slice. It backs the always-available mock backend and seeds from fixtures.
package memory

import (
	"context"
	"sync"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
)

// Collection is a slice-backed collection. Iteration order is insertion
// order, which makes FindOne deterministic for identical contents.
type Collection struct {
	name string

	mu   sync.RWMutex
	recs []storage.Record
}

// NewCollection builds an in-memory collection seeded with the given
// records. Seed records without an id get one assigned.
func NewCollection(name string, seed []storage.Record) *Collection {
	recs := make([]storage.Record, 0, len(seed))
	for _, rec := range seed {
		stored := storage.Clone(rec)
		if storage.RecordID(stored) == "" {
			stored[storage.IDField] = storage.NewID()
		}
		recs = append(recs, stored)
	}
	return &Collection{name: name, recs: recs}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Find(_ context.Context, query storage.Query) ([]storage.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []storage.Record{}
	for _, rec := range c.recs {
		if storage.Matches(rec, query) {
			out = append(out, storage.Clone(rec))
		}
	}
	return out, nil
}

func (c *Collection) FindOne(_ context.Context, query storage.Query) (storage.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.recs {
		if storage.Matches(rec, query) {
			return storage.Clone(rec), nil
		}
	}
	return nil, nil
}

func (c *Collection) FindByID(_ context.Context, id string) (storage.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if rec := c.locate(id); rec != nil {
		return storage.Clone(rec), nil
	}
	return nil, nil
}

func (c *Collection) InsertOne(_ context.Context, data storage.Record) (storage.Record, error) {
	stored := storage.Clone(data)
	stored[storage.IDField] = storage.NewID()

	c.mu.Lock()
	c.recs = append(c.recs, stored)
	c.mu.Unlock()

	return storage.Clone(stored), nil
}

func (c *Collection) UpdateOne(_ context.Context, id string, patch storage.Patch) (storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.locate(id)
	if rec == nil {
		return nil, nil
	}
	storage.Merge(rec, patch)
	return storage.Clone(rec), nil
}

func (c *Collection) DeleteOne(_ context.Context, id string) (storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, rec := range c.recs {
		if storage.RecordID(rec) == id {
			c.recs = append(c.recs[:i], c.recs[i+1:]...)
			return storage.Clone(rec), nil
		}
	}
	return nil, nil
}

func (c *Collection) Count(_ context.Context, query storage.Query) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, rec := range c.recs {
		if storage.Matches(rec, query) {
			n++
		}
	}
	return n, nil
}

// locate returns the live stored record for id; callers hold the lock.
func (c *Collection) locate(id string) storage.Record {
	for _, rec := range c.recs {
		if storage.RecordID(rec) == id {
			return rec
		}
	}
	return nil
}
