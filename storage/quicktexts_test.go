package storage

import (
	"context"
	"reflect"
	"testing"

	"quickclipboard/clip_helper"
)

func TestCreateQuickTextDefaultsToAllGroup(t *testing.T) {
	q := NewQuickTexts(openTestDB(t), nil)
	ctx := context.Background()

	first, err := q.Create(ctx, "greeting", string(clip_helper.KindText), "hello", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.GroupID != AllGroupID {
		t.Fatalf("expected all group, got %q", first.GroupID)
	}
	if first.ID == "" {
		t.Fatalf("quick text got no id")
	}

	second, err := q.Create(ctx, "sign-off", string(clip_helper.KindText), "bye", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if second.Position <= first.Position {
		t.Fatalf("positions must grow: %d then %d", first.Position, second.Position)
	}
}

func TestDeleteQuickTextDropsItsImage(t *testing.T) {
	images := &fakeImages{}
	q := NewQuickTexts(openTestDB(t), images)
	ctx := context.Background()

	qt, err := q.Create(ctx, "shot", string(clip_helper.KindImage), "", "feedbeef00001111", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := q.Delete(ctx, qt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !reflect.DeepEqual(images.deleted, []string{"feedbeef00001111"}) {
		t.Fatalf("unexpected image deletions: %#v", images.deleted)
	}

	if err := q.Delete(ctx, qt.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMoveToGroupValidatesTarget(t *testing.T) {
	db := openTestDB(t)
	q := NewQuickTexts(db, nil)
	g := NewGroups(db)
	ctx := context.Background()

	qt, err := q.Create(ctx, "x", string(clip_helper.KindText), "x", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := q.MoveToGroup(ctx, qt.ID, "no-such-group"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for bogus group, got %v", err)
	}

	work, err := g.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("group Create failed: %v", err)
	}
	if err := q.MoveToGroup(ctx, qt.ID, work.ID); err != nil {
		t.Fatalf("MoveToGroup failed: %v", err)
	}

	moved, err := q.Get(ctx, qt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if moved.GroupID != work.ID {
		t.Fatalf("quick text still in %q", moved.GroupID)
	}
}

func TestReorderWithinGroup(t *testing.T) {
	db := openTestDB(t)
	q := NewQuickTexts(db, nil)
	g := NewGroups(db)
	ctx := context.Background()

	work, err := g.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("group Create failed: %v", err)
	}

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		qt, err := q.Create(ctx, title, string(clip_helper.KindText), title, "", work.ID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, qt.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := q.ReorderWithinGroup(ctx, work.ID, reversed); err != nil {
		t.Fatalf("ReorderWithinGroup failed: %v", err)
	}

	items, err := q.List(ctx, work.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.ID
	}
	if !reflect.DeepEqual(got, reversed) {
		t.Fatalf("order after reorder: got %#v want %#v", got, reversed)
	}
}

func TestAllGroupCannotBeDeleted(t *testing.T) {
	g := NewGroups(openTestDB(t))
	if err := g.Delete(context.Background(), AllGroupID); err != ErrReservedGroup {
		t.Fatalf("expected ErrReservedGroup, got %v", err)
	}
}

func TestDeleteGroupReassignsMembers(t *testing.T) {
	db := openTestDB(t)
	q := NewQuickTexts(db, nil)
	g := NewGroups(db)
	ctx := context.Background()

	work, err := g.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("group Create failed: %v", err)
	}
	a, err := q.Create(ctx, "a", string(clip_helper.KindText), "a", "", work.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := q.Create(ctx, "b", string(clip_helper.KindText), "b", "", work.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := g.Delete(ctx, work.ID); err != nil {
		t.Fatalf("group Delete failed: %v", err)
	}

	items, err := q.List(ctx, AllGroupID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var got []string
	for _, it := range items {
		if it.GroupID != AllGroupID {
			t.Fatalf("member %q left in deleted group %q", it.Title, it.GroupID)
		}
		got = append(got, it.ID)
	}
	// Relative order of the orphans survives the move.
	if !reflect.DeepEqual(got, []string{a.ID, b.ID}) {
		t.Fatalf("orphan order: got %#v want %#v", got, []string{a.ID, b.ID})
	}
}

func TestGroupListRespectsGlobalOrder(t *testing.T) {
	g := NewGroups(openTestDB(t))
	ctx := context.Background()

	work, err := g.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	home, err := g.Create(ctx, "Home", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := g.SetOrder(ctx, []string{home.ID, work.ID, AllGroupID}); err != nil {
		t.Fatalf("SetOrder failed: %v", err)
	}

	groups, err := g.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := make([]string, len(groups))
	for i, gr := range groups {
		got[i] = gr.ID
	}
	want := []string{home.ID, work.ID, AllGroupID}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("group order: got %#v want %#v", got, want)
	}
}
