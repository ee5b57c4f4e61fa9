package db

import (
	"context"
	"testing"

	"github.com/hpungsan/orbit/internal/contact"
)

func TestRegisterTag_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := RegisterTag(ctx, db, &contact.Tag{ID: "01T1", Name: "Work", NameNorm: "work", CreatedAt: 1})
	if err != nil || !created {
		t.Fatalf("RegisterTag = %v, %v; want true, nil", created, err)
	}
	created, err = RegisterTag(ctx, db, &contact.Tag{ID: "01T2", Name: "WORK", NameNorm: "work", CreatedAt: 2})
	if err != nil || created {
		t.Fatalf("second RegisterTag = %v, %v; want false, nil", created, err)
	}

	tags, err := ListTags(ctx, db, "", 0)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "Work" {
		t.Errorf("ListTags = %+v, want the first spelling only", tags)
	}
}

func TestListTags_Prefix(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"Work", "Workout", "Family", "wine"} {
		tag := &contact.Tag{ID: string(rune('A' + i)), Name: name, NameNorm: contact.Normalize(name)}
		if _, err := RegisterTag(ctx, db, tag); err != nil {
			t.Fatalf("RegisterTag(%s) failed: %v", name, err)
		}
	}

	tags, err := ListTags(ctx, db, "w", 0)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	var names []string
	for _, tg := range tags {
		names = append(names, tg.Name)
	}
	if len(names) != 3 || names[0] != "wine" || names[1] != "Work" || names[2] != "Workout" {
		t.Errorf("ListTags(w) = %v", names)
	}

	tags, err = ListTags(ctx, db, "w", 1)
	if err != nil || len(tags) != 1 {
		t.Errorf("ListTags(w, 1) = %v, %v", tags, err)
	}
}
