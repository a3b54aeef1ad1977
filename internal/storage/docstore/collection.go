package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// Collection stores one JSON document per record in a single Redis hash.
// Reads degrade to empty results when the store is unreachable; writes fail
// with coded errors so callers never mistake a lost write for success.
type Collection struct {
	rdb     cmdable
	key     string
	name    string
	timeout time.Duration
	log     *logger.Logger
}

// NewCollection binds a collection name to its hash under the given database
// namespace. A zero opTimeout falls back to the package default.
func NewCollection(rdb cmdable, dbName, name string, opTimeout time.Duration, log *logger.Logger) *Collection {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Collection{
		rdb:     rdb,
		key:     dbName + ":" + name,
		name:    name,
		timeout: opTimeout,
		log:     log,
	}
}

func (c *Collection) Find(ctx context.Context, query storage.Query) ([]storage.Record, error) {
	recs, err := c.loadAll(ctx)
	if err != nil {
		c.logReadFailure(ctx, "document store read failed, returning empty result", err)
		return []storage.Record{}, nil
	}

	out := make([]storage.Record, 0, len(recs))
	for _, rec := range recs {
		if storage.Matches(rec, query) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, query storage.Query) (storage.Record, error) {
	recs, err := c.loadAll(ctx)
	if err != nil {
		// Corrupt documents already carry PERSISTENCE_FAILURE; everything
		// else is the store being unreachable.
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeConnection, err, "reading documents")
	}
	for _, rec := range recs {
		if storage.Matches(rec, query) {
			return rec, nil
		}
	}
	return nil, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	raw, err := c.rdb.HGet(ctx, c.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConnection, err, "looking up document")
	}
	return c.decode([]byte(raw))
}

func (c *Collection) InsertOne(ctx context.Context, data storage.Record) (storage.Record, error) {
	rec := storage.Clone(data)
	id := storage.NewID()
	rec[storage.IDField] = id

	payload, err := json.Marshal(storage.ToNative(rec))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsert, err, "encoding document")
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.HSet(ctx, c.key, id, payload).Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsert, err, "inserting document")
	}

	// Round-trip the stored payload so the caller sees exactly what future
	// reads will return.
	return c.decode(payload)
}

func (c *Collection) UpdateOne(ctx context.Context, id string, patch storage.Patch) (storage.Record, error) {
	current, err := c.fetchForWrite(ctx, id, pkgerrors.CodeUpdate)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	storage.Merge(current, patch)

	payload, err := json.Marshal(storage.ToNative(current))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpdate, err, "encoding document")
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.HSet(ctx, c.key, id, payload).Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpdate, err, "updating document")
	}
	return c.decode(payload)
}

func (c *Collection) DeleteOne(ctx context.Context, id string) (storage.Record, error) {
	current, err := c.fetchForWrite(ctx, id, pkgerrors.CodeDelete)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.HDel(ctx, c.key, id).Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDelete, err, "deleting document")
	}
	return current, nil
}

func (c *Collection) Count(ctx context.Context, query storage.Query) (int64, error) {
	if len(query) == 0 {
		ctx, cancel := c.bound(ctx)
		defer cancel()

		n, err := c.rdb.HLen(ctx, c.key).Result()
		if err != nil {
			c.logReadFailure(ctx, "document store count failed, returning zero", err)
			return 0, nil
		}
		return n, nil
	}

	recs, err := c.Find(ctx, query)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

// fetchForWrite reads the document backing a mutation. Unlike plain reads,
// a failed fetch here fails the write: mutating blind would risk clobbering
// a record we could not see.
func (c *Collection) fetchForWrite(ctx context.Context, id string, code pkgerrors.Code) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	raw, err := c.rdb.HGet(ctx, c.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(code, err, "reading document before write")
	}
	return c.decode([]byte(raw))
}

func (c *Collection) loadAll(ctx context.Context) ([]storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	raw, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, err
	}

	recs := make([]storage.Record, 0, len(raw))
	for _, doc := range raw {
		rec, err := c.decode([]byte(doc))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	// Hash iteration order is unspecified; sort by id so repeated queries
	// return records in a stable order.
	sort.Slice(recs, func(i, j int) bool {
		return storage.RecordID(recs[i]) < storage.RecordID(recs[j])
	})
	return recs, nil
}

func (c *Collection) decode(payload []byte) (storage.Record, error) {
	var native storage.Record
	if err := json.Unmarshal(payload, &native); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decoding document")
	}
	return storage.FromNative(native), nil
}

func (c *Collection) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Collection) logReadFailure(ctx context.Context, msg string, err error) {
	if c.log == nil {
		return
	}
	c.log.Error(c.log.WithCollection(ctx, c.name), msg, err)
}