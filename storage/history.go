package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"quickclipboard/clip_helper"
)

// InsertResult says what Insert did with a payload.
type InsertResult int

const (
	// Inserted means a brand new entry landed at the head.
	Inserted InsertResult = iota
	// Moved means an existing entry with the same payload was bumped to
	// the head instead.
	Moved
)

// Entry is the payload handed to Insert. Images arrive already stored, as an
// image id.
type Entry struct {
	Kind    clip_helper.Kind
	Text    string
	HTML    string
	ImageID string
	Files   []string
}

// History is the bounded, de-duplicated clipboard history. Head = newest.
// All mutating calls serialize on the shared DB mutex, so a caller that
// checked for duplicates never races a concurrent delete.
type History struct {
	db     *DB
	images ImageRemover
	limit  int
	lastTS int64
}

// NewHistory wires a History over db. limit is the retained entry count;
// images receives Delete calls from Clear.
func NewHistory(db *DB, limit int, images ImageRemover) (*History, error) {
	h := &History{db: db, images: images, limit: limit}

	var maxTS int64
	err := db.bun.NewSelect().
		Model((*ClipboardItem)(nil)).
		ColumnExpr("COALESCE(MAX(timestamp), 0)").
		Scan(context.Background(), &maxTS)
	if err != nil {
		return nil, fmt.Errorf("failed to read newest timestamp: %w", err)
	}
	h.lastTS = maxTS
	return h, nil
}

// SetLimit changes the retained entry count. The new bound applies from the
// next Insert.
func (h *History) SetLimit(n int) {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	if n > 0 {
		h.limit = n
	}
}

// nextTimestamp returns a wall-clock second that is strictly newer than any
// timestamp handed out so far, so a moved or inserted row always sorts to
// the head. Caller holds the DB mutex.
func (h *History) nextTimestamp() int64 {
	ts := time.Now().Unix()
	if ts <= h.lastTS {
		ts = h.lastTS + 1
	}
	h.lastTS = ts
	return ts
}

// Insert records a payload. A payload identical to an existing entry (text
// compared trimmed, images by id, file lists in order) is moved to the head
// instead of duplicated. After a fresh insert, rows beyond the limit are
// trimmed oldest-first.
func (h *History) Insert(ctx context.Context, e Entry) (InsertResult, *ClipboardItem, error) {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	existing, err := h.findDuplicate(ctx, e)
	if err != nil {
		return 0, nil, err
	}

	if existing != nil {
		existing.Timestamp = h.nextTimestamp()
		_, err := h.db.bun.NewUpdate().
			Model(existing).
			Column("timestamp").
			WherePK().
			Exec(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to move entry to head: %w", err)
		}
		return Moved, existing, nil
	}

	item := &ClipboardItem{
		Kind:      string(e.Kind),
		Text:      e.Text,
		HTML:      e.HTML,
		ImageID:   e.ImageID,
		Timestamp: h.nextTimestamp(),
	}
	item.SetFiles(e.Files)

	if _, err := h.db.bun.NewInsert().Model(item).Exec(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	if err := h.trim(ctx); err != nil {
		return 0, nil, err
	}
	return Inserted, item, nil
}

// findDuplicate looks for an entry with the same payload. Caller holds the
// DB mutex.
func (h *History) findDuplicate(ctx context.Context, e Entry) (*ClipboardItem, error) {
	switch e.Kind {
	case clip_helper.KindImage:
		var item ClipboardItem
		err := h.db.bun.NewSelect().
			Model(&item).
			Where("kind = ?", string(clip_helper.KindImage)).
			Where("image_id = ?", e.ImageID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to check for duplicate image: %w", err)
		}
		return &item, nil

	case clip_helper.KindFiles:
		data, _ := json.Marshal(e.Files)
		var item ClipboardItem
		err := h.db.bun.NewSelect().
			Model(&item).
			Where("kind = ?", string(clip_helper.KindFiles)).
			Where("files_json = ?", string(data)).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to check for duplicate file list: %w", err)
		}
		return &item, nil

	default:
		// Text equality ignores surrounding whitespace but stored text
		// keeps it, so the comparison happens in Go over the text rows.
		want := strings.TrimSpace(e.Text)
		var items []*ClipboardItem
		err := h.db.bun.NewSelect().
			Model(&items).
			Column("id", "kind", "text", "html", "image_id", "files_json", "timestamp").
			Where("kind = ?", string(clip_helper.KindText)).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate text: %w", err)
		}
		for _, it := range items {
			if strings.TrimSpace(it.Text) == want {
				return it, nil
			}
		}
		return nil, nil
	}
}

// trim drops rows past the limit, oldest first. Caller holds the DB mutex.
func (h *History) trim(ctx context.Context) error {
	_, err := h.db.bun.NewDelete().
		Model((*ClipboardItem)(nil)).
		Where("id NOT IN (SELECT id FROM clipboard_items ORDER BY timestamp DESC, id DESC LIMIT ?)", h.limit).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// List returns entries newest first. limit <= 0 returns everything.
func (h *History) List(ctx context.Context, limit int) ([]*ClipboardItem, error) {
	var items []*ClipboardItem
	q := h.db.bun.NewSelect().
		Model(&items).
		Order("timestamp DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return items, nil
}

// Search returns text entries whose content contains query, newest first.
func (h *History) Search(ctx context.Context, query string, limit int) ([]*ClipboardItem, error) {
	var items []*ClipboardItem
	q := h.db.bun.NewSelect().
		Model(&items).
		Where("text LIKE ?", "%"+query+"%").
		Order("timestamp DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	return items, nil
}

// Get returns one entry by id.
func (h *History) Get(ctx context.Context, id int64) (*ClipboardItem, error) {
	var item ClipboardItem
	err := h.db.bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load entry %d: %w", id, err)
	}
	return &item, nil
}

// Delete removes one entry. The referenced image, if any, stays on disk
// until garbage collection.
func (h *History) Delete(ctx context.Context, id int64) error {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	_, err := h.db.bun.NewDelete().
		Model((*ClipboardItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return nil
}

// UpdateText rewrites a text entry's content. The HTML representation is
// dropped because it no longer matches.
func (h *History) UpdateText(ctx context.Context, id int64, text string) error {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	res, err := h.db.bun.NewUpdate().
		Model((*ClipboardItem)(nil)).
		Set("text = ?", text).
		Set("html = ''").
		Where("id = ?", id).
		Where("kind = ?", string(clip_helper.KindText)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder rewrites timestamps so the listed ids come back in the given
// order, head first. Later inserts still land above because timestamps are
// handed out monotonically.
func (h *History) Reorder(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	base := h.lastTS
	return h.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, id := range ids {
			_, err := tx.NewUpdate().
				Model((*ClipboardItem)(nil)).
				Set("timestamp = ?", base-int64(i)).
				Where("id = ?", id).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to reorder entry %d: %w", id, err)
			}
		}
		return nil
	})
}

// Clear drops every entry and deletes the images they referenced.
func (h *History) Clear(ctx context.Context) error {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	var imageIDs []string
	err := h.db.bun.NewSelect().
		Model((*ClipboardItem)(nil)).
		Column("image_id").
		Where("image_id != ''").
		Scan(ctx, &imageIDs)
	if err != nil {
		return fmt.Errorf("failed to collect image references: %w", err)
	}

	_, err = h.db.bun.NewDelete().
		Model((*ClipboardItem)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	if h.images != nil {
		for _, id := range imageIDs {
			if err := h.images.Delete(id); err != nil {
				return fmt.Errorf("failed to drop image %s: %w", id, err)
			}
		}
	}
	return nil
}

// ImageIDs returns every image id the history currently references.
func (h *History) ImageIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := h.db.bun.NewSelect().
		Model((*ClipboardItem)(nil)).
		Column("image_id").
		Where("image_id != ''").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to collect image references: %w", err)
	}
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		used[id] = struct{}{}
	}
	return used, nil
}
