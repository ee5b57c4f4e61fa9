package db

import (
	"context"
	"testing"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

func seedInteractions(t *testing.T, q DBTX) {
	t.Helper()
	ctx := context.Background()
	mustInsertContact(t, q, "01A", "Tom")
	mustInsertContact(t, q, "01B", "Sarah")
	for _, i := range []contact.Interaction{
		{ID: "01I1", ContactID: "01A", Impulse: "Coffee", Content: "talked jazz", Date: 100, TagNames: "Work", CreatedAt: 1},
		{ID: "01I2", ContactID: "01A", Impulse: "Call", Content: "", Date: 300, TagNames: "Family,Holiday", CreatedAt: 2},
		{ID: "01I3", ContactID: "01A", Impulse: "Lunch", Content: "100% fun", Date: 200, CreatedAt: 3},
		{ID: "01I4", ContactID: "01B", Impulse: "Dinner", Date: 250, CreatedAt: 4},
	} {
		if err := InsertInteraction(ctx, q, &i); err != nil {
			t.Fatalf("InsertInteraction(%s) failed: %v", i.ID, err)
		}
	}
}

func interactionIDs(items []contact.Interaction) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestListInteractions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedInteractions(t, db)

	got, err := ListInteractions(ctx, db, "01A", 0)
	if err != nil {
		t.Fatalf("ListInteractions failed: %v", err)
	}
	if ids := interactionIDs(got); !equalIDs(ids, []string{"01I2", "01I3", "01I1"}) {
		t.Errorf("ListInteractions order = %v", ids)
	}

	got, err = ListInteractions(ctx, db, "01A", 1)
	if err != nil {
		t.Fatalf("ListInteractions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "01I2" {
		t.Errorf("limited list = %v", interactionIDs(got))
	}
	if tags := got[0].Tags(); len(tags) != 2 || tags[0] != "Family" {
		t.Errorf("Tags() = %v", tags)
	}
}

func TestSoftDeleteInteraction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedInteractions(t, db)

	if err := SoftDeleteInteraction(ctx, db, "01I2", 500); err != nil {
		t.Fatalf("SoftDeleteInteraction failed: %v", err)
	}

	got, err := GetInteraction(ctx, db, "01I2")
	if err != nil {
		t.Fatalf("GetInteraction failed: %v", err)
	}
	if !got.IsDeleted() || *got.DeletedAt != 500 {
		t.Errorf("DeletedAt = %v, want 500", got.DeletedAt)
	}

	list, _ := ListInteractions(ctx, db, "01A", 0)
	if ids := interactionIDs(list); !equalIDs(ids, []string{"01I3", "01I1"}) {
		t.Errorf("list after delete = %v", ids)
	}

	if err := SoftDeleteInteraction(ctx, db, "01I2", 600); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second soft delete error = %v, want NOT_FOUND", err)
	}
	if _, err := GetInteraction(ctx, db, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetInteraction(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestSearchInteractions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedInteractions(t, db)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"01I2", "01I3", "01I1"}},
		{query: "JAZZ", want: []string{"01I1"}},
		{query: "coffee", want: []string{"01I1"}},
		{query: "holiday", want: []string{"01I2"}},
		{query: "100%", want: []string{"01I3"}},
		{query: "%", want: []string{"01I3"}},
		{query: "dinner", want: []string{}},
	}

	for _, tt := range tests {
		got, err := SearchInteractions(ctx, db, "01A", tt.query, 0)
		if err != nil {
			t.Fatalf("SearchInteractions(%q) failed: %v", tt.query, err)
		}
		if ids := interactionIDs(got); !equalIDs(ids, tt.want) {
			t.Errorf("SearchInteractions(%q) = %v, want %v", tt.query, ids, tt.want)
		}
	}
}

func TestRecentInteractions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedInteractions(t, db)

	got, err := RecentInteractions(ctx, db, 2)
	if err != nil {
		t.Fatalf("RecentInteractions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Interaction.ID != "01I2" || got[0].ContactName != "Tom" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Interaction.ID != "01I4" || got[1].ContactName != "Sarah" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestPurgeDeletedInteractions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedInteractions(t, db)

	for id, at := range map[string]int64{"01I1": 100, "01I2": 900, "01I4": 100} {
		if err := SoftDeleteInteraction(ctx, db, id, at); err != nil {
			t.Fatalf("SoftDeleteInteraction(%s) failed: %v", id, err)
		}
	}

	tom := "01A"
	cutoff := int64(500)
	n, err := PurgeDeletedInteractions(ctx, db, &tom, &cutoff)
	if err != nil {
		t.Fatalf("PurgeDeletedInteractions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, err := GetInteraction(ctx, db, "01I1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("01I1 still present: %v", err)
	}

	n, err = PurgeDeletedInteractions(ctx, db, nil, nil)
	if err != nil {
		t.Fatalf("PurgeDeletedInteractions failed: %v", err)
	}
	if n != 2 {
		t.Errorf("purged %d, want 2", n)
	}
	if _, err := GetInteraction(ctx, db, "01I3"); err != nil {
		t.Errorf("non-deleted interaction purged: %v", err)
	}
}
