package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// PurgeInput contains parameters for the PurgeInteractions operation.
type PurgeInput struct {
	// Optional contact filter (exact by name)
	ContactID   string
	ContactName string

	OlderThanDays *int // optional, only purge if deleted_at <= (now - N days)
}

// PurgeOutput contains the result of the PurgeInteractions operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// PurgeInteractions permanently deletes soft-deleted interactions. Undone
// interactions stay recoverable in the store until purged.
func (e *Executor) PurgeInteractions(ctx context.Context, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	var ref *Ref
	if input.ContactID != "" || input.ContactName != "" {
		var err error
		if ref, err = ValidateRef(input.ContactID, input.ContactName); err != nil {
			return nil, err
		}
	}

	var before *int64
	if input.OlderThanDays != nil {
		cutoff := e.now().Add(-time.Duration(*input.OlderThanDays) * 24 * time.Hour).Unix()
		before = &cutoff
	}

	var (
		count int64
		name  string
	)
	err := e.mutate(ctx, func(tx *sql.Tx) ([]string, error) {
		var contactID *string
		if ref != nil {
			c, err := lookupContact(ctx, tx, ref, true)
			if err != nil {
				return nil, err
			}
			contactID, name = &c.ID, c.Name
		}
		var err error
		count, err = db.PurgeDeletedInteractions(ctx, tx, contactID, before)
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  int(count),
		Message: formatPurgeMessage(int(count), name, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, contactName string, olderThanDays *int) string {
	if count == 0 {
		return "No deleted interactions to purge"
	}

	word := "interaction"
	if count > 1 {
		word = "interactions"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)

	if contactName != "" {
		msg += " for " + contactName
	}

	if olderThanDays != nil {
		msg += fmt.Sprintf(" (deleted more than %d days ago)", *olderThanDays)
	}

	return msg
}
