package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// Search bounds
const (
	MaxSearchLimit = 200
	MaxQueryLength = 500
)

// searchContact resolves the contact and reports what to show. It never
// writes.
func (e *Executor) searchContact(ctx context.Context, c command.SearchContact) (outcome, error) {
	target, err := ResolveContact(ctx, e.db, c.ContactName, false)
	if err != nil {
		return notFound(err, "contact not found: %s", c.ContactName)
	}

	msg := "Showing " + target.Name
	if c.Query != "" {
		msg = fmt.Sprintf("Searching %s for %q", target.Name, c.Query)
	}
	return outcome{result: Result{
		Success:         true,
		Message:         msg,
		AffectedContact: contactRef(target),
		Search:          &SearchIntent{ContactID: target.ID, Query: c.Query},
	}}, nil
}

func (e *Executor) searchConstellation(ctx context.Context, c command.SearchConstellation) (outcome, error) {
	target, err := ResolveConstellation(ctx, e.db, c.ConstellationName)
	if err != nil {
		return notFound(err, "constellation not found: %s", c.ConstellationName)
	}

	msg := "Showing " + target.Name
	if c.Query != "" {
		msg = fmt.Sprintf("Searching %s for %q", target.Name, c.Query)
	}
	return outcome{result: Result{
		Success:               true,
		Message:               msg,
		AffectedConstellation: constellationRef(target),
		Search:                &SearchIntent{ConstellationID: target.ID, Query: c.Query},
	}}, nil
}

// SearchInput contains parameters for SearchInteractions.
type SearchInput struct {
	// Addressing (fuzzy by name)
	ContactID   string
	ContactName string

	Query string // empty lists everything
	Limit int    // default: 50, max: 200
}

// SearchOutput contains the result of SearchInteractions.
type SearchOutput struct {
	Contact ContactRef            `json:"contact"`
	Query   string                `json:"query"`
	Items   []contact.Interaction `json:"items"`
}

// SearchInteractions matches a query against one contact's impulses, notes
// and tags, newest first. This is what a SearchContact intent shows.
func SearchInteractions(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	ref, err := ValidateRef(input.ContactID, input.ContactName)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(input.Query)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	c, err := lookupContact(ctx, database, ref, false)
	if err != nil {
		return nil, err
	}

	limit := clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit)
	items, err := db.SearchInteractions(ctx, database, c.ID, query, limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{
		Contact: *contactRef(c),
		Query:   query,
		Items:   items,
	}, nil
}
