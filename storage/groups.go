package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Groups manages quick-text groups and the global group ordering.
type Groups struct {
	db *DB
}

func NewGroups(db *DB) *Groups {
	return &Groups{db: db}
}

// Create adds a group at the end of the global order.
func (g *Groups) Create(ctx context.Context, name, icon string) (*Group, error) {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()

	now := time.Now().Unix()
	group := &Group{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := g.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(group).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		var maxPos int
		err := tx.NewSelect().
			Model((*GroupOrder)(nil)).
			ColumnExpr("COALESCE(MAX(position), -1)").
			Scan(ctx, &maxPos)
		if err != nil {
			return fmt.Errorf("failed to read group order tail: %w", err)
		}
		slot := &GroupOrder{GroupID: group.ID, Position: maxPos + 1}
		if _, err := tx.NewInsert().Model(slot).Exec(ctx); err != nil {
			return fmt.Errorf("failed to append group order slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Update renames a group or changes its icon.
func (g *Groups) Update(ctx context.Context, id, name, icon string) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()

	res, err := g.db.bun.NewUpdate().
		Model((*Group)(nil)).
		Set("name = ?", name).
		Set("icon = ?", icon).
		Set("updated_at = ?", time.Now().Unix()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a group and reassigns its quick texts to the all group.
// The reserved all group cannot be deleted.
func (g *Groups) Delete(ctx context.Context, id string) error {
	if id == AllGroupID {
		return ErrReservedGroup
	}

	g.db.mu.Lock()
	defer g.db.mu.Unlock()

	return g.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Group)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete group %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		var maxPos int
		err = tx.NewSelect().
			Model((*QuickText)(nil)).
			ColumnExpr("COALESCE(MAX(position), -1)").
			Where("group_id = ?", AllGroupID).
			Scan(ctx, &maxPos)
		if err != nil {
			return fmt.Errorf("failed to read all-group tail: %w", err)
		}

		// Orphaned quick texts keep their relative order at the tail
		// of the all group.
		_, err = tx.NewUpdate().
			Model((*QuickText)(nil)).
			Set("group_id = ?", AllGroupID).
			Set("position = position + ?", maxPos+1).
			Where("group_id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reassign quick texts: %w", err)
		}

		_, err = tx.NewDelete().
			Model((*GroupOrder)(nil)).
			Where("group_id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop group order slot: %w", err)
		}
		return nil
	})
}

// List returns groups in the global order. Groups missing an order slot sort
// last by creation time.
func (g *Groups) List(ctx context.Context) ([]*Group, error) {
	var groups []*Group
	if err := g.db.bun.NewSelect().Model(&groups).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var slots []*GroupOrder
	if err := g.db.bun.NewSelect().Model(&slots).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load group order: %w", err)
	}
	pos := make(map[string]int, len(slots))
	for _, s := range slots {
		pos[s.GroupID] = s.Position
	}

	sort.SliceStable(groups, func(i, j int) bool {
		pi, iOK := pos[groups[i].ID]
		pj, jOK := pos[groups[j].ID]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return groups[i].CreatedAt < groups[j].CreatedAt
		}
	})
	return groups, nil
}

// SetOrder rewrites the global order vector. Groups absent from ids keep no
// slot and sort last.
func (g *Groups) SetOrder(ctx context.Context, ids []string) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()

	return g.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*GroupOrder)(nil)).
			Where("1 = 1").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset group order: %w", err)
		}
		for i, id := range ids {
			slot := &GroupOrder{GroupID: id, Position: i}
			if _, err := tx.NewInsert().Model(slot).Exec(ctx); err != nil {
				return fmt.Errorf("failed to write group order slot: %w", err)
			}
		}
		return nil
	})
}
