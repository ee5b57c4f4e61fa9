package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// ListContactsInput contains parameters for the ListContacts operation.
type ListContactsInput struct {
	IncludeArchived bool
	DriftingOnly    bool
	Orbit           *int  // optional filter
	Limit           int   // default: 20, max: 100
	Offset          int   // default: 0
	CadenceDays     []int // nil uses contact.DefaultCadenceDays
	Now             time.Time
}

// ContactSummary is a contact row in a listing.
type ContactSummary struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Archived      bool               `json:"archived"`
	TargetOrbit   int                `json:"target_orbit"`
	LastContactAt *int64             `json:"last_contact_at"`
	Drift         contact.DriftState `json:"drift"`
}

// ListContactsOutput contains the result of the ListContacts operation.
type ListContactsOutput struct {
	Items      []ContactSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// ListContacts returns contact summaries ordered by name with pagination.
func ListContacts(ctx context.Context, database *sql.DB, input ListContactsInput) (*ListContactsOutput, error) {
	if input.Orbit != nil && !contact.ValidOrbit(*input.Orbit) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("orbit must be between %d and %d", contact.MinOrbit, contact.MaxOrbit))
	}

	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	filters := db.ContactFilters{IncludeArchived: input.IncludeArchived, Orbit: input.Orbit}

	var (
		contacts []contact.Contact
		total    int
		err      error
	)
	if input.DriftingOnly {
		// Drift depends on now, so it is filtered here rather than in SQL.
		contacts, _, err = db.ListContacts(ctx, database, filters, 0, 0)
		if err != nil {
			return nil, err
		}
		drifting := contacts[:0]
		for _, c := range contacts {
			if contact.Drift(c.TargetOrbit, c.LastContactAt, now, input.CadenceDays) == contact.DriftDrifting {
				drifting = append(drifting, c)
			}
		}
		total = len(drifting)
		contacts = drifting[min(offset, total):min(offset+limit, total)]
	} else {
		contacts, total, err = db.ListContacts(ctx, database, filters, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	items := make([]ContactSummary, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, ContactSummary{
			ID:            c.ID,
			Name:          c.Name,
			Archived:      c.Archived,
			TargetOrbit:   c.TargetOrbit,
			LastContactAt: c.LastContactAt,
			Drift:         contact.Drift(c.TargetOrbit, c.LastContactAt, now, input.CadenceDays),
		})
	}

	return &ListContactsOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "name_asc",
	}, nil
}
