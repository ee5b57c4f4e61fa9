package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// CreateConstellation adds an empty constellation. Names are unique
// case-insensitively.
func (e *Executor) CreateConstellation(ctx context.Context, name string) (*contact.Constellation, error) {
	name, err := checkName("constellation", name)
	if err != nil {
		return nil, err
	}
	if err := e.validateName(name); err != nil {
		return nil, err
	}

	now := e.now()
	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	k := &contact.Constellation{
		ID:        id,
		Name:      name,
		NameNorm:  contact.Normalize(name),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		return nil, db.InsertConstellation(ctx, tx, k)
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

// DeleteConstellation hard-deletes a constellation and its memberships.
// Member contacts are kept. Name addressing is exact.
func (e *Executor) DeleteConstellation(ctx context.Context, id, name string) (*DeleteOutput, error) {
	ref, err := ValidateRef(id, name)
	if err != nil {
		return nil, err
	}

	var out *DeleteOutput
	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		k, err := lookupConstellation(ctx, tx, ref, true)
		if err != nil {
			return nil, err
		}
		if err := db.DeleteConstellation(ctx, tx, k.ID); err != nil {
			return nil, err
		}
		out = &DeleteOutput{Deleted: true, ID: k.ID, Name: k.Name}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MembershipInput addresses a constellation and a contact. Both accept an ID
// or an exact name.
type MembershipInput struct {
	ConstellationID   string
	ConstellationName string
	ContactID         string
	ContactName       string
}

// MembershipOutput contains the result of AddMember and RemoveMember.
type MembershipOutput struct {
	Constellation ConstellationRef `json:"constellation"`
	Contact       ContactRef       `json:"contact"`
}

// AddMember puts a contact into a constellation. Archived contacts may join
// but are skipped by fan-out logging until restored.
func (e *Executor) AddMember(ctx context.Context, input MembershipInput) (*MembershipOutput, error) {
	return e.membership(ctx, input, func(tx *sql.Tx, k *contact.Constellation, c *contact.Contact) error {
		return db.AddMember(ctx, tx, k.ID, c.ID, e.now().Unix())
	})
}

// RemoveMember takes a contact out of a constellation.
func (e *Executor) RemoveMember(ctx context.Context, input MembershipInput) (*MembershipOutput, error) {
	return e.membership(ctx, input, func(tx *sql.Tx, k *contact.Constellation, c *contact.Contact) error {
		return db.RemoveMember(ctx, tx, k.ID, c.ID)
	})
}

func (e *Executor) membership(ctx context.Context, input MembershipInput, apply func(*sql.Tx, *contact.Constellation, *contact.Contact) error) (*MembershipOutput, error) {
	kRef, err := ValidateRef(input.ConstellationID, input.ConstellationName)
	if err != nil {
		return nil, err
	}
	cRef, err := ValidateRef(input.ContactID, input.ContactName)
	if err != nil {
		return nil, err
	}

	var out *MembershipOutput
	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		k, err := lookupConstellation(ctx, tx, kRef, true)
		if err != nil {
			return nil, err
		}
		c, err := lookupContact(ctx, tx, cRef, true)
		if err != nil {
			return nil, err
		}
		if err := apply(tx, k, c); err != nil {
			return nil, err
		}
		out = &MembershipOutput{Constellation: *constellationRef(k), Contact: *contactRef(c)}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConstellationListItem is a constellation with its members.
type ConstellationListItem struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Members       []ContactRef `json:"members"`
	ActiveMembers int          `json:"active_members"`
}

// ListConstellationsOutput contains the result of ListConstellations.
type ListConstellationsOutput struct {
	Items []ConstellationListItem `json:"items"`
}

// ListConstellations returns every constellation ordered by name, with
// members (archived included) ordered by name.
func ListConstellations(ctx context.Context, database *sql.DB) (*ListConstellationsOutput, error) {
	summaries, err := db.ListConstellations(ctx, database)
	if err != nil {
		return nil, err
	}

	items := make([]ConstellationListItem, 0, len(summaries))
	for _, s := range summaries {
		members, err := db.ListMembers(ctx, database, s.Constellation.ID, true)
		if err != nil {
			return nil, err
		}
		refs := make([]ContactRef, 0, len(members))
		for i := range members {
			refs = append(refs, *contactRef(&members[i]))
		}
		items = append(items, ConstellationListItem{
			ID:            s.Constellation.ID,
			Name:          s.Constellation.Name,
			Members:       refs,
			ActiveMembers: s.ActiveMembers,
		})
	}
	return &ListConstellationsOutput{Items: items}, nil
}
