// Package sqlstore implements the collection contract over a relational
// database through GORM. Each collection maps to one table whose primary key
// column is the record's public id, so no key translation happens here.
package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// Collection runs contract operations against a single table. Reads degrade
// to empty results when the database is unreachable; writes fail with coded
// errors.
type Collection struct {
	db      *gorm.DB
	table   string
	timeout time.Duration
	log     *logger.Logger
}

const defaultOpTimeout = 5 * time.Second

// NewCollection binds a collection name to its table. A zero opTimeout falls
// back to the package default.
func NewCollection(db *gorm.DB, table string, opTimeout time.Duration, log *logger.Logger) *Collection {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Collection{db: db, table: table, timeout: opTimeout, log: log}
}

func (c *Collection) Find(ctx context.Context, query storage.Query) ([]storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var rows []map[string]any
	tx := c.db.WithContext(ctx).Table(c.table).Order("id")
	if len(query) > 0 {
		tx = tx.Where(map[string]any(query))
	}
	if err := tx.Find(&rows).Error; err != nil {
		c.logReadFailure(ctx, "relational read failed, returning empty result", err)
		return []storage.Record{}, nil
	}

	out := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row))
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, query storage.Query) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var rows []map[string]any
	tx := c.db.WithContext(ctx).Table(c.table).Order("id").Limit(1)
	if len(query) > 0 {
		tx = tx.Where(map[string]any(query))
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConnection, err, "reading row")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return normalizeRow(rows[0]), nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	row, err := c.rowByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConnection, err, "looking up row")
	}
	return row, nil
}

func (c *Collection) InsertOne(ctx context.Context, data storage.Record) (storage.Record, error) {
	rec := storage.Clone(data)
	id := storage.NewID()
	rec[storage.IDField] = id

	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.db.WithContext(ctx).Table(c.table).Create(map[string]any(rec)).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsert, err, "inserting row")
	}

	row, err := c.rowByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsert, err, "reading inserted row")
	}
	return row, nil
}

func (c *Collection) UpdateOne(ctx context.Context, id string, patch storage.Patch) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	current, err := c.rowByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpdate, err, "reading row before update")
	}
	if current == nil {
		return nil, nil
	}

	// The primary key is immutable regardless of what the patch carries.
	changes := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == storage.IDField {
			continue
		}
		changes[k] = v
	}
	if len(changes) == 0 {
		return current, nil
	}

	err = c.db.WithContext(ctx).Table(c.table).
		Where("id = ?", id).
		Updates(changes).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpdate, err, "updating row")
	}

	row, err := c.rowByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpdate, err, "reading updated row")
	}
	return row, nil
}

func (c *Collection) DeleteOne(ctx context.Context, id string) (storage.Record, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	current, err := c.rowByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDelete, err, "reading row before delete")
	}
	if current == nil {
		return nil, nil
	}

	err = c.db.WithContext(ctx).Table(c.table).
		Where("id = ?", id).
		Delete(nil).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDelete, err, "deleting row")
	}
	return current, nil
}

func (c *Collection) Count(ctx context.Context, query storage.Query) (int64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var n int64
	tx := c.db.WithContext(ctx).Table(c.table)
	if len(query) > 0 {
		tx = tx.Where(map[string]any(query))
	}
	if err := tx.Count(&n).Error; err != nil {
		c.logReadFailure(ctx, "relational count failed, returning zero", err)
		return 0, nil
	}
	return n, nil
}

// rowByID returns (nil, nil) when no row matches.
func (c *Collection) rowByID(ctx context.Context, id string) (storage.Record, error) {
	var rows []map[string]any
	err := c.db.WithContext(ctx).Table(c.table).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return normalizeRow(rows[0]), nil
}

// normalizeRow smooths over driver differences so callers see the same value
// kinds every backend produces: byte slices become strings.
func normalizeRow(row map[string]any) storage.Record {
	rec := make(storage.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
			continue
		}
		rec[k] = v
	}
	return rec
}

func (c *Collection) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Collection) logReadFailure(ctx context.Context, msg string, err error) {
	if c.log == nil {
		return
	}
	c.log.Error(c.log.WithCollection(ctx, c.table), msg, err)
}
