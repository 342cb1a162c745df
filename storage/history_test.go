package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"quickclipboard/clip_helper"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), DBFileName))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestHistory(t *testing.T, limit int, images ImageRemover) *History {
	t.Helper()
	h, err := NewHistory(openTestDB(t), limit, images)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	return h
}

// fakeImages records deletions handed to the storage layer.
type fakeImages struct {
	deleted []string
}

func (f *fakeImages) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func textEntry(s string) Entry {
	return Entry{Kind: clip_helper.KindText, Text: s}
}

func listTexts(t *testing.T, h *History) []string {
	t.Helper()
	items, err := h.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

func TestInsertDuplicateMovesToHead(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	for i, s := range []string{"hello", "world"} {
		res, _, err := h.Insert(ctx, textEntry(s))
		if err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
		if res != Inserted {
			t.Fatalf("insert %d: expected Inserted, got %v", i, res)
		}
	}

	res, item, err := h.Insert(ctx, textEntry("hello"))
	if err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}
	if res != Moved {
		t.Fatalf("expected Moved, got %v", res)
	}
	if item.Text != "hello" {
		t.Fatalf("moved item carries wrong text %q", item.Text)
	}

	want := []string{"hello", "world"}
	if got := listTexts(t, h); !reflect.DeepEqual(got, want) {
		t.Fatalf("history order: got %#v want %#v", got, want)
	}
}

func TestInsertTrimsPastLimit(t *testing.T) {
	h := newTestHistory(t, 3, nil)
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		if _, _, err := h.Insert(ctx, textEntry(s)); err != nil {
			t.Fatalf("insert %q failed: %v", s, err)
		}
	}

	want := []string{"e", "d", "c"}
	if got := listTexts(t, h); !reflect.DeepEqual(got, want) {
		t.Fatalf("history after trim: got %#v want %#v", got, want)
	}
}

func TestInsertTextEqualityIgnoresSurroundingWhitespace(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	if _, _, err := h.Insert(ctx, textEntry("  spaced  ")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	res, item, err := h.Insert(ctx, textEntry("spaced"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res != Moved {
		t.Fatalf("expected Moved for trimmed-equal text, got %v", res)
	}
	// Stored text keeps the original whitespace.
	if item.Text != "  spaced  " {
		t.Fatalf("stored text changed: %q", item.Text)
	}
	if got := listTexts(t, h); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %#v", got)
	}
}

func TestInsertFileListOrderMatters(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	ab := Entry{Kind: clip_helper.KindFiles, Files: []string{`C:\a`, `C:\b`}}
	ba := Entry{Kind: clip_helper.KindFiles, Files: []string{`C:\b`, `C:\a`}}

	if res, _, err := h.Insert(ctx, ab); err != nil || res != Inserted {
		t.Fatalf("first insert: res=%v err=%v", res, err)
	}
	if res, _, err := h.Insert(ctx, ba); err != nil || res != Inserted {
		t.Fatalf("reversed list should be a new entry: res=%v err=%v", res, err)
	}
	if res, _, err := h.Insert(ctx, ab); err != nil || res != Moved {
		t.Fatalf("identical list should move: res=%v err=%v", res, err)
	}

	items, err := h.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
	if !reflect.DeepEqual(items[0].Files(), []string{`C:\a`, `C:\b`}) {
		t.Fatalf("moved entry not at head: %#v", items[0].Files())
	}
}

func TestInsertImageDeduplicatesByID(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	img := Entry{Kind: clip_helper.KindImage, ImageID: "0123456789abcdef"}
	if res, _, err := h.Insert(ctx, img); err != nil || res != Inserted {
		t.Fatalf("first insert: res=%v err=%v", res, err)
	}
	if res, _, err := h.Insert(ctx, img); err != nil || res != Moved {
		t.Fatalf("same image id should move: res=%v err=%v", res, err)
	}
}

func TestDeleteThenReinsertIsFresh(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	_, item, err := h.Insert(ctx, textEntry("gone"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := h.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	res, again, err := h.Insert(ctx, textEntry("gone"))
	if err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}
	if res != Inserted {
		t.Fatalf("expected fresh insert after delete, got %v", res)
	}
	if again.ID == item.ID {
		t.Fatalf("re-insert reused deleted id %d", item.ID)
	}
}

func TestUpdateText(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	_, item, err := h.Insert(ctx, Entry{Kind: clip_helper.KindText, Text: "old", HTML: "<b>old</b>"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := h.UpdateText(ctx, item.ID, "new"); err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}

	got, err := h.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Text != "new" || got.HTML != "" {
		t.Fatalf("unexpected entry after update: %#v", got)
	}

	if err := h.UpdateText(ctx, 99999, "x"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestReorderThenInsertLandsAtHead(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	ids := make(map[string]int64)
	for _, s := range []string{"A", "B", "C"} {
		_, item, err := h.Insert(ctx, textEntry(s))
		if err != nil {
			t.Fatalf("insert %q failed: %v", s, err)
		}
		ids[s] = item.ID
	}

	// Natural order is C, B, A; rearrange to A, B, C.
	if err := h.Reorder(ctx, []int64{ids["A"], ids["B"], ids["C"]}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	want := []string{"A", "B", "C"}
	if got := listTexts(t, h); !reflect.DeepEqual(got, want) {
		t.Fatalf("after reorder: got %#v want %#v", got, want)
	}

	// Reordering the already-sorted list changes nothing observable.
	if err := h.Reorder(ctx, []int64{ids["A"], ids["B"], ids["C"]}); err != nil {
		t.Fatalf("second Reorder failed: %v", err)
	}
	if got := listTexts(t, h); !reflect.DeepEqual(got, want) {
		t.Fatalf("idempotent reorder broke order: got %#v", got)
	}

	if _, _, err := h.Insert(ctx, textEntry("D")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if got := listTexts(t, h); got[0] != "D" {
		t.Fatalf("new insert must land at head, got %#v", got)
	}
}

func TestClearDeletesReferencedImages(t *testing.T) {
	images := &fakeImages{}
	h := newTestHistory(t, 100, images)
	ctx := context.Background()

	if _, _, err := h.Insert(ctx, Entry{Kind: clip_helper.KindImage, ImageID: "aaaa000011112222"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, _, err := h.Insert(ctx, textEntry("text stays out of it")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := h.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := listTexts(t, h); len(got) != 0 {
		t.Fatalf("history not empty after Clear: %#v", got)
	}
	if !reflect.DeepEqual(images.deleted, []string{"aaaa000011112222"}) {
		t.Fatalf("unexpected image deletions: %#v", images.deleted)
	}
}

func TestSearchMatchesSubstring(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	for _, s := range []string{"alpha release notes", "beta notes", "unrelated"} {
		if _, _, err := h.Insert(ctx, textEntry(s)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	items, err := h.Search(ctx, "notes", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Text
	}
	want := []string{"beta notes", "alpha release notes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("search results: got %#v want %#v", got, want)
	}
}

func TestImageIDs(t *testing.T) {
	h := newTestHistory(t, 100, nil)
	ctx := context.Background()

	if _, _, err := h.Insert(ctx, Entry{Kind: clip_helper.KindImage, ImageID: "1111111111111111"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, _, err := h.Insert(ctx, textEntry("no image")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	used, err := h.ImageIDs(ctx)
	if err != nil {
		t.Fatalf("ImageIDs failed: %v", err)
	}
	if _, ok := used["1111111111111111"]; !ok || len(used) != 1 {
		t.Fatalf("unexpected referenced set: %#v", used)
	}
}
