// Package localstore implements the collection contract over an in-memory
// copy snapshotted to an embedded SQLite database after every mutation. The
// in-memory copy stays authoritative even when a snapshot write fails.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
)

// Store owns the slot table each collection snapshots into.
type Store struct {
	db *gorm.DB
}

type slotRow struct {
	Name    string `gorm:"column:name;primaryKey"`
	Payload []byte `gorm:"column:payload"`
}

func (slotRow) TableName() string {
	return "slots"
}

// Open opens (or creates) the snapshot database at path. Use ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "stockroom.db"
	}

	silent := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: silent, SkipDefaultTransaction: true})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (name TEXT PRIMARY KEY, payload BLOB NOT NULL)`).Error; err != nil {
		return nil, fmt.Errorf("creating slots table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the records stored in the named slot, in their native shape.
// A missing slot is an empty collection, not an error.
func (s *Store) Load(ctx context.Context, slot string) ([]storage.Record, error) {
	var row slotRow
	err := s.db.WithContext(ctx).Where("name = ?", slot).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading slot %s: %w", slot, err)
	}

	var recs []storage.Record
	if err := json.Unmarshal(row.Payload, &recs); err != nil {
		return nil, fmt.Errorf("decoding slot %s: %w", slot, err)
	}
	return recs, nil
}

// Save serializes the records and upserts them into the named slot.
func (s *Store) Save(ctx context.Context, slot string, recs []storage.Record) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding slot %s: %w", slot, err)
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload"}),
		}).
		Create(&slotRow{Name: slot, Payload: payload}).Error
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", slot, err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
