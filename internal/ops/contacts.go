package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

func (e *Executor) setArchived(ctx context.Context, tx *sql.Tx, name string, archived bool) (outcome, error) {
	target, err := ResolveContact(ctx, tx, name, true)
	if err != nil {
		return notFound(err, "contact not found: %s", name)
	}

	verb := "Archived"
	if !archived {
		verb = "Restored"
	}
	if target.Archived != archived {
		target.Archived = archived
		target.UpdatedAt = e.now().Unix()
		if err := db.UpdateContact(ctx, tx, target); err != nil {
			return outcome{}, err
		}
	}

	return outcome{
		result: Result{
			Success:         true,
			Message:         fmt.Sprintf("%s %s", verb, target.Name),
			AffectedContact: contactRef(target),
		},
		reindex: []string{target.ID},
	}, nil
}

// CreateContactInput contains parameters for CreateContact.
type CreateContactInput struct {
	Name  string
	Notes string
	Orbit *int // nil uses the configured default
}

// CreateContact adds a contact. Names are unique case-insensitively.
func (e *Executor) CreateContact(ctx context.Context, input CreateContactInput) (*contact.Contact, error) {
	name, err := checkName("contact", input.Name)
	if err != nil {
		return nil, err
	}
	if err := e.validateName(name); err != nil {
		return nil, err
	}

	orbit := e.defaultOrbit
	if input.Orbit != nil {
		orbit = *input.Orbit
	}
	if !contact.ValidOrbit(orbit) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("orbit must be between %d and %d", contact.MinOrbit, contact.MaxOrbit))
	}

	now := e.now()
	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	c := &contact.Contact{
		ID:          id,
		Name:        name,
		NameNorm:    contact.Normalize(name),
		Notes:       input.Notes,
		TargetOrbit: orbit,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
	}

	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		return []string{c.ID}, db.InsertContact(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContactInput contains parameters for UpdateContact.
type UpdateContactInput struct {
	// Addressing
	ID   string
	Name string

	// Editable fields (nil = don't change)
	NewName *string
	Notes   *string
	Orbit   *int
}

// UpdateContact renames a contact or edits its notes or orbit. Name
// addressing is exact; a rename recomputes the normalized name.
func (e *Executor) UpdateContact(ctx context.Context, input UpdateContactInput) (*contact.Contact, error) {
	ref, err := ValidateRef(input.ID, input.Name)
	if err != nil {
		return nil, err
	}
	if input.NewName == nil && input.Notes == nil && input.Orbit == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	var newName string
	if input.NewName != nil {
		if newName, err = checkName("contact", *input.NewName); err != nil {
			return nil, err
		}
		if err := e.validateName(newName); err != nil {
			return nil, err
		}
	}
	if input.Orbit != nil && !contact.ValidOrbit(*input.Orbit) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("orbit must be between %d and %d", contact.MinOrbit, contact.MaxOrbit))
	}

	var updated *contact.Contact
	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		c, err := lookupContact(ctx, tx, ref, true)
		if err != nil {
			return nil, err
		}
		if input.NewName != nil {
			c.Name = newName
			c.NameNorm = contact.Normalize(newName)
		}
		if input.Notes != nil {
			c.Notes = *input.Notes
		}
		if input.Orbit != nil {
			c.TargetOrbit = *input.Orbit
		}
		c.UpdatedAt = e.now().Unix()
		if err := db.UpdateContact(ctx, tx, c); err != nil {
			return nil, err
		}
		updated = c
		return []string{c.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOutput contains the result of a hard delete.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

// DeleteContact hard-deletes a contact with its interactions, artifacts and
// memberships. Name addressing is exact.
func (e *Executor) DeleteContact(ctx context.Context, id, name string) (*DeleteOutput, error) {
	ref, err := ValidateRef(id, name)
	if err != nil {
		return nil, err
	}

	var out *DeleteOutput
	err = e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		c, err := lookupContact(ctx, tx, ref, true)
		if err != nil {
			return nil, err
		}
		if err := db.DeleteContact(ctx, tx, c.ID); err != nil {
			return nil, err
		}
		out = &DeleteOutput{Deleted: true, ID: c.ID, Name: c.Name}
		return []string{c.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
