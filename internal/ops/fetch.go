package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
)

// FetchContactInput contains parameters for the FetchContact operation.
type FetchContactInput struct {
	// Addressing (fuzzy by name)
	ID   string
	Name string

	IncludeArchived bool
	RecentLimit     int   // default: 10, max: 100
	CadenceDays     []int // nil uses contact.DefaultCadenceDays
	Now             time.Time
}

// FetchContactOutput is a contact with everything a detail view shows.
type FetchContactOutput struct {
	contact.Contact
	Artifacts      []contact.Artifact      `json:"artifacts"`
	Recent         []contact.Interaction   `json:"recent"`
	TagUsage       []contact.TagCount      `json:"tag_usage"`
	CadenceDays    int                     `json:"cadence_days"`
	Drift          contact.DriftState      `json:"drift"`
	Constellations []contact.Constellation `json:"constellations"`
}

// FetchContact loads a contact by ID or name. Tag usage is derived from all
// of the contact's non-deleted interactions, not just the recent ones.
func FetchContact(ctx context.Context, database *sql.DB, input FetchContactInput) (*FetchContactOutput, error) {
	ref, err := ValidateRef(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	var c *contact.Contact
	if ref.ByID {
		c, err = db.GetContactByID(ctx, database, ref.ID)
	} else {
		c, err = ResolveContact(ctx, database, ref.Name, input.IncludeArchived)
	}
	if err != nil {
		return nil, err
	}

	artifacts, err := db.ListArtifacts(ctx, database, c.ID)
	if err != nil {
		return nil, err
	}
	history, err := db.ListInteractions(ctx, database, c.ID, 0)
	if err != nil {
		return nil, err
	}
	groups, err := db.ConstellationsForContact(ctx, database, c.ID)
	if err != nil {
		return nil, err
	}

	recent := history[:min(len(history), clampLimit(input.RecentLimit, DefaultRecentLimit, MaxListLimit))]

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	return &FetchContactOutput{
		Contact:        *c,
		Artifacts:      artifacts,
		Recent:         recent,
		TagUsage:       contact.TagUsage(history),
		CadenceDays:    cadenceDays(c.TargetOrbit, input.CadenceDays),
		Drift:          contact.Drift(c.TargetOrbit, c.LastContactAt, now, input.CadenceDays),
		Constellations: groups,
	}, nil
}

func cadenceDays(orbit int, days []int) int {
	return int(contact.CadenceThreshold(orbit, days) / (24 * time.Hour))
}
