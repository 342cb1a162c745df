package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// QuickTexts is the store for user-promoted reusable entries. An image quick
// text owns its image copy, so deleting the quick text drops the file too.
type QuickTexts struct {
	db     *DB
	images ImageRemover
}

func NewQuickTexts(db *DB, images ImageRemover) *QuickTexts {
	return &QuickTexts{db: db, images: images}
}

// Create stores a new quick text at the tail of its group. An empty groupID
// lands it in the all group.
func (q *QuickTexts) Create(ctx context.Context, title, kind, content, imageID, groupID string) (*QuickText, error) {
	if groupID == "" {
		groupID = AllGroupID
	}

	q.db.mu.Lock()
	defer q.db.mu.Unlock()

	pos, err := q.tailPosition(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	qt := &QuickText{
		ID:        uuid.NewString(),
		Title:     title,
		Kind:      kind,
		Content:   content,
		ImageID:   imageID,
		GroupID:   groupID,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := q.db.bun.NewInsert().Model(qt).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create quick text: %w", err)
	}
	return qt, nil
}

// tailPosition returns the next free position in a group. Caller holds the
// DB mutex.
func (q *QuickTexts) tailPosition(ctx context.Context, groupID string) (int, error) {
	var maxPos int
	err := q.db.bun.NewSelect().
		Model((*QuickText)(nil)).
		ColumnExpr("COALESCE(MAX(position), -1)").
		Where("group_id = ?", groupID).
		Scan(ctx, &maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to read group tail position: %w", err)
	}
	return maxPos + 1, nil
}

// Get returns one quick text by id.
func (q *QuickTexts) Get(ctx context.Context, id string) (*QuickText, error) {
	var qt QuickText
	err := q.db.bun.NewSelect().
		Model(&qt).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quick text %s: %w", id, err)
	}
	return &qt, nil
}

// List returns quick texts ordered by position. groupID "" or "all" returns
// every quick text.
func (q *QuickTexts) List(ctx context.Context, groupID string) ([]*QuickText, error) {
	var items []*QuickText
	sel := q.db.bun.NewSelect().
		Model(&items).
		Order("position ASC", "created_at ASC")
	if groupID != "" && groupID != AllGroupID {
		sel = sel.Where("group_id = ?", groupID)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list quick texts: %w", err)
	}
	return items, nil
}

// Update rewrites title and content.
func (q *QuickTexts) Update(ctx context.Context, id, title, content string) error {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()

	res, err := q.db.bun.NewUpdate().
		Model((*QuickText)(nil)).
		Set("title = ?", title).
		Set("content = ?", content).
		Set("updated_at = ?", time.Now().Unix()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update quick text %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a quick text and its private image copy.
func (q *QuickTexts) Delete(ctx context.Context, id string) error {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()

	qt := new(QuickText)
	err := q.db.bun.NewSelect().Model(qt).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load quick text %s: %w", id, err)
	}

	if _, err := q.db.bun.NewDelete().Model(qt).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete quick text %s: %w", id, err)
	}
	if qt.ImageID != "" && q.images != nil {
		if err := q.images.Delete(qt.ImageID); err != nil {
			return fmt.Errorf("failed to drop quick text image: %w", err)
		}
	}
	return nil
}

// MoveToGroup reassigns a quick text to the tail of another group.
func (q *QuickTexts) MoveToGroup(ctx context.Context, id, groupID string) error {
	if groupID == "" {
		groupID = AllGroupID
	}

	q.db.mu.Lock()
	defer q.db.mu.Unlock()

	exists, err := q.db.bun.NewSelect().
		Model((*Group)(nil)).
		Where("id = ?", groupID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check group %s: %w", groupID, err)
	}
	if !exists {
		return ErrNotFound
	}

	pos, err := q.tailPosition(ctx, groupID)
	if err != nil {
		return err
	}

	res, err := q.db.bun.NewUpdate().
		Model((*QuickText)(nil)).
		Set("group_id = ?", groupID).
		Set("position = ?", pos).
		Set("updated_at = ?", time.Now().Unix()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to move quick text %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderWithinGroup rewrites positions so the listed ids come back in the
// given order.
func (q *QuickTexts) ReorderWithinGroup(ctx context.Context, groupID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	q.db.mu.Lock()
	defer q.db.mu.Unlock()

	return q.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, id := range ids {
			_, err := tx.NewUpdate().
				Model((*QuickText)(nil)).
				Set("position = ?", i).
				Where("id = ?", id).
				Where("group_id = ?", groupID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to reorder quick text %s: %w", id, err)
			}
		}
		return nil
	})
}

// ImageIDs returns every image id quick texts currently reference.
func (q *QuickTexts) ImageIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := q.db.bun.NewSelect().
		Model((*QuickText)(nil)).
		Column("image_id").
		Where("image_id != ''").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to collect quick text image references: %w", err)
	}
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		used[id] = struct{}{}
	}
	return used, nil
}
