package storage

import (
	"context"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
)

// Instrument wraps a collection so every operation reports duration and
// failure to the storage metrics. A nil metrics handle returns the
// collection unwrapped.
func Instrument(col Collection, backend, collection string, m *metrics.StorageMetrics) Collection {
	if m == nil {
		return col
	}
	return &instrumented{next: col, backend: backend, collection: collection, metrics: m}
}

type instrumented struct {
	next       Collection
	backend    string
	collection string
	metrics    *metrics.StorageMetrics
}

func (c *instrumented) observe(op string, start time.Time, err error) {
	c.metrics.ObserveDuration(c.backend, c.collection, op, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(c.backend, c.collection, op)
	}
}

func (c *instrumented) Find(ctx context.Context, query Query) ([]Record, error) {
	start := time.Now()
	recs, err := c.next.Find(ctx, query)
	c.observe("find", start, err)
	return recs, err
}

func (c *instrumented) FindOne(ctx context.Context, query Query) (Record, error) {
	start := time.Now()
	rec, err := c.next.FindOne(ctx, query)
	c.observe("find_one", start, err)
	return rec, err
}

func (c *instrumented) FindByID(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	rec, err := c.next.FindByID(ctx, id)
	c.observe("find_by_id", start, err)
	return rec, err
}

func (c *instrumented) InsertOne(ctx context.Context, data Record) (Record, error) {
	start := time.Now()
	rec, err := c.next.InsertOne(ctx, data)
	c.observe("insert_one", start, err)
	return rec, err
}

func (c *instrumented) UpdateOne(ctx context.Context, id string, patch Patch) (Record, error) {
	start := time.Now()
	rec, err := c.next.UpdateOne(ctx, id, patch)
	c.observe("update_one", start, err)
	return rec, err
}

func (c *instrumented) DeleteOne(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	rec, err := c.next.DeleteOne(ctx, id)
	c.observe("delete_one", start, err)
	return rec, err
}

func (c *instrumented) Count(ctx context.Context, query Query) (int64, error) {
	start := time.Now()
	n, err := c.next.Count(ctx, query)
	c.observe("count", start, err)
	return n, err
}
