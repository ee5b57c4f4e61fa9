package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
)

// ListTagsInput contains parameters for the ListTags operation.
type ListTagsInput struct {
	Prefix string // optional, matched case-insensitively
	Limit  int    // default: 20, max: 200
}

// ListTagsOutput contains the result of the ListTags operation.
type ListTagsOutput struct {
	Items []contact.Tag `json:"items"`
}

// ListTags returns catalog tags for autocomplete, ordered by name.
func ListTags(ctx context.Context, database *sql.DB, input ListTagsInput) (*ListTagsOutput, error) {
	limit := clampLimit(input.Limit, DefaultTagLimit, MaxTagLimit)
	tags, err := db.ListTags(ctx, database, contact.Normalize(input.Prefix), limit)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Items: tags}, nil
}
