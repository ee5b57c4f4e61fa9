package db

import (
	"context"
	"testing"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

func mustInsertConstellation(t *testing.T, q DBTX, id, name string) *contact.Constellation {
	t.Helper()
	k := &contact.Constellation{ID: id, Name: name, NameNorm: contact.Normalize(name), CreatedAt: 1, UpdatedAt: 1}
	if err := InsertConstellation(context.Background(), q, k); err != nil {
		t.Fatalf("InsertConstellation(%s) failed: %v", name, err)
	}
	return k
}

func TestConstellationLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustInsertConstellation(t, db, "01K1", "Family")
	mustInsertConstellation(t, db, "01K2", "Fam Friends")

	got, err := FindConstellationExact(ctx, db, "family")
	if err != nil || got.ID != "01K1" {
		t.Fatalf("FindConstellationExact = %v, %v", got, err)
	}
	got, err = FindConstellationPrefix(ctx, db, "fam")
	if err != nil || got.ID != "01K2" {
		t.Errorf("FindConstellationPrefix(fam) = %v, %v; want Fam Friends", got, err)
	}
	got, err = GetConstellationByID(ctx, db, "01K1")
	if err != nil || got.Name != "Family" {
		t.Errorf("GetConstellationByID = %v, %v", got, err)
	}
	if _, err := FindConstellationExact(ctx, db, "work"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("FindConstellationExact(work) error = %v, want NOT_FOUND", err)
	}

	dup := &contact.Constellation{ID: "01K3", Name: "FAMILY", NameNorm: "family"}
	if err := InsertConstellation(ctx, db, dup); !errors.Is(err, errors.ErrNameAlreadyExists) {
		t.Errorf("duplicate constellation error = %v, want NAME_ALREADY_EXISTS", err)
	}
}

func TestMembers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustInsertConstellation(t, db, "01K1", "Family")
	mustInsertContact(t, db, "01A", "Tom")
	mustInsertContact(t, db, "01B", "Anna")
	c := mustInsertContact(t, db, "01C", "Zed")
	c.Archived = true
	if err := UpdateContact(ctx, db, c); err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}

	for _, id := range []string{"01A", "01B", "01C"} {
		if err := AddMember(ctx, db, "01K1", id, 1); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", id, err)
		}
	}
	if err := AddMember(ctx, db, "01K1", "01A", 2); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("duplicate AddMember error = %v, want CONFLICT", err)
	}

	active, err := ActiveMembers(ctx, db, "01K1")
	if err != nil {
		t.Fatalf("ActiveMembers failed: %v", err)
	}
	if len(active) != 2 || active[0].Name != "Anna" || active[1].Name != "Tom" {
		t.Errorf("ActiveMembers = %+v", active)
	}

	all, err := ListMembers(ctx, db, "01K1", true)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListMembers len = %d, want 3", len(all))
	}

	summaries, err := ListConstellations(ctx, db)
	if err != nil {
		t.Fatalf("ListConstellations failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Members != 3 || summaries[0].ActiveMembers != 2 {
		t.Errorf("ListConstellations = %+v", summaries)
	}

	groups, err := ConstellationsForContact(ctx, db, "01C")
	if err != nil {
		t.Fatalf("ConstellationsForContact failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != "01K1" {
		t.Errorf("ConstellationsForContact = %+v", groups)
	}

	if err := RemoveMember(ctx, db, "01K1", "01A"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if err := RemoveMember(ctx, db, "01K1", "01A"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second RemoveMember error = %v, want NOT_FOUND", err)
	}

	if err := DeleteConstellation(ctx, db, "01K1"); err != nil {
		t.Fatalf("DeleteConstellation failed: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM constellation_members").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("memberships after constellation delete = %d, want 0", n)
	}
	if _, err := GetContactByID(ctx, db, "01B"); err != nil {
		t.Errorf("member contact removed with constellation: %v", err)
	}
}

func TestListConstellations_Empty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustInsertConstellation(t, db, "01K1", "Lonely")

	got, err := ListConstellations(ctx, db)
	if err != nil {
		t.Fatalf("ListConstellations failed: %v", err)
	}
	if len(got) != 1 || got[0].Members != 0 || got[0].ActiveMembers != 0 {
		t.Errorf("ListConstellations = %+v", got)
	}
}
