// Package storage persists clipboard history, quick texts and groups in a
// single sqlite database behind bun. All writers share one mutex; sqlite
// gets one logical writer at a time and multi-row work runs in transactions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DBFileName is the database file created under the app data dir.
const DBFileName = "clipboard.db"

var (
	// ErrReservedGroup is returned when deleting the built-in "all" group.
	ErrReservedGroup = errors.New("the all group cannot be deleted")

	// ErrNotFound is returned when a row lookup comes back empty.
	ErrNotFound = errors.New("record not found")
)

// ImageRemover is the slice of the image store the storage layer needs when
// rows that reference images go away.
type ImageRemover interface {
	Delete(id string) error
}

// DB owns the bun connection and the write mutex shared by every store.
type DB struct {
	bun *bun.DB
	mu  sync.Mutex
}

// Open opens (creating if needed) the database at path and migrates the
// schema.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{bun: bun.NewDB(sqldb, sqlitedialect.New())}
	if err := db.migrate(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.bun.Close()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (d *DB) migrate() error {
	ctx := context.Background()

	models := []interface{}{
		(*ClipboardItem)(nil),
		(*QuickText)(nil),
		(*Group)(nil),
		(*GroupOrder)(nil),
	}
	for _, model := range models {
		if _, err := d.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_clipboard_timestamp ON clipboard_items(timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_clipboard_kind ON clipboard_items(kind)",
		"CREATE INDEX IF NOT EXISTS idx_quick_texts_group ON quick_texts(group_id)",
	}
	for _, idx := range indexes {
		if _, err := d.bun.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return d.ensureAllGroup(ctx)
}

// ensureAllGroup seeds the reserved group and its order slot.
func (d *DB) ensureAllGroup(ctx context.Context) error {
	exists, err := d.bun.NewSelect().
		Model((*Group)(nil)).
		Where("id = ?", AllGroupID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for the all group: %w", err)
	}
	if exists {
		return nil
	}

	now := time.Now().Unix()
	group := &Group{ID: AllGroupID, Name: "All", CreatedAt: now, UpdatedAt: now}
	if _, err := d.bun.NewInsert().Model(group).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create the all group: %w", err)
	}
	slot := &GroupOrder{GroupID: AllGroupID, Position: 0}
	if _, err := d.bun.NewInsert().Model(slot).Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed group order: %w", err)
	}
	return nil
}
