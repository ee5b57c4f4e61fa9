package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit     = 20
	MaxListLimit         = 100
	DefaultTimelineLimit = 50
	MaxTimelineLimit     = 500
	DefaultRecentLimit   = 10
	DefaultTagLimit      = 20
	MaxTagLimit          = 200
	DefaultSearchLimit   = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Ref addresses a contact or constellation by ID or by name.
type Ref struct {
	ByID bool
	ID   string
	Name string // normalized
}

// ValidateRef validates addressing parameters and returns a normalized Ref.
// Rules:
// - Must specify exactly one of id or name
// - A name must not normalize to empty
func ValidateRef(id, name string) (*Ref, error) {
	id = strings.TrimSpace(id)
	nameNorm := contact.Normalize(name)

	if id != "" && nameNorm != "" {
		return nil, errors.NewInvalidRequest("specify either id or name, not both")
	}
	if id == "" && nameNorm == "" {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}
	if id != "" {
		return &Ref{ByID: true, ID: id}, nil
	}
	return &Ref{Name: nameNorm}, nil
}

// ContactRef identifies a contact in results.
type ContactRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConstellationRef identifies a constellation in results.
type ConstellationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func contactRef(c *contact.Contact) *ContactRef {
	return &ContactRef{ID: c.ID, Name: c.Name}
}

func constellationRef(k *contact.Constellation) *ConstellationRef {
	return &ConstellationRef{ID: k.ID, Name: k.Name}
}

// generateULID creates a new ULID stamped with t.
func generateULID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// clampLimit applies a default and an upper bound.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
