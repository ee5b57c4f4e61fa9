package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

const interactionColumns = `id, contact_id, impulse, content, date, tag_names, created_at, deleted_at`

// TimelineEntry is an interaction with its contact's display name.
type TimelineEntry struct {
	contact.Interaction
	ContactName string `json:"contact_name"`
}

// InsertInteraction stores a new interaction.
func InsertInteraction(ctx context.Context, q DBTX, i *contact.Interaction) error {
	query := `
		INSERT INTO interactions (
			id, contact_id, impulse, content, date, tag_names, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
	`
	_, err := q.ExecContext(ctx, query,
		i.ID, i.ContactID, i.Impulse, i.Content, i.Date, i.TagNames, i.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetInteraction retrieves an interaction by ID, including soft-deleted ones.
func GetInteraction(ctx context.Context, q DBTX, id string) (*contact.Interaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE id = ?`, id)
	i, err := scanInteraction(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("interaction", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return i, nil
}

// SoftDeleteInteraction marks an interaction deleted. Already-deleted or
// missing interactions return NOT_FOUND.
func SoftDeleteInteraction(ctx context.Context, q DBTX, id string, now int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE interactions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "interaction", id)
}

// ListInteractions returns a contact's non-deleted interactions, newest
// first. A limit <= 0 returns all of them.
func ListInteractions(ctx context.Context, q DBTX, contactID string, limit int) ([]contact.Interaction, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions
		WHERE contact_id = ? AND deleted_at IS NULL
		ORDER BY date DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return queryInteractions(ctx, q, query, contactID)
}

// SearchInteractions matches query case-insensitively against impulse,
// content and tag names of a contact's non-deleted interactions. An empty
// query matches everything.
func SearchInteractions(ctx context.Context, q DBTX, contactID, query string, limit int) ([]contact.Interaction, error) {
	if query == "" {
		return ListInteractions(ctx, q, contactID, limit)
	}

	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := `SELECT ` + interactionColumns + ` FROM interactions
		WHERE contact_id = ? AND deleted_at IS NULL
		  AND (impulse LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR tag_names LIKE ? ESCAPE '\')
		ORDER BY date DESC, id DESC`
	if limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	}
	return queryInteractions(ctx, q, sqlQuery, contactID, pattern, pattern, pattern)
}

// RecentInteractions returns the newest non-deleted interactions across all
// contacts, joined with contact names.
func RecentInteractions(ctx context.Context, q DBTX, limit int) ([]TimelineEntry, error) {
	query := `
		SELECT i.id, i.contact_id, i.impulse, i.content, i.date, i.tag_names, i.created_at, i.deleted_at, c.name
		FROM interactions i
		JOIN contacts c ON c.id = i.contact_id
		WHERE i.deleted_at IS NULL
		ORDER BY i.date DESC, i.id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := []TimelineEntry{}
	for rows.Next() {
		var (
			e       TimelineEntry
			deleted sql.NullInt64
		)
		err := rows.Scan(
			&e.Interaction.ID, &e.Interaction.ContactID, &e.Interaction.Impulse, &e.Interaction.Content,
			&e.Interaction.Date, &e.Interaction.TagNames, &e.Interaction.CreatedAt, &deleted, &e.ContactName,
		)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Interaction.DeletedAt = fromNullInt64(deleted)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// PurgeDeletedInteractions hard-deletes soft-deleted interactions, optionally
// scoped to one contact and to those deleted at or before a cutoff. Returns the
// number of rows removed.
func PurgeDeletedInteractions(ctx context.Context, q DBTX, contactID *string, deletedBefore *int64) (int64, error) {
	query := `DELETE FROM interactions WHERE deleted_at IS NOT NULL`
	var args []any
	if contactID != nil {
		query += " AND contact_id = ?"
		args = append(args, *contactID)
	}
	if deletedBefore != nil {
		query += " AND deleted_at <= ?"
		args = append(args, *deletedBefore)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

func queryInteractions(ctx context.Context, q DBTX, query string, args ...any) ([]contact.Interaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []contact.Interaction{}
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

func scanInteraction(row scanner) (*contact.Interaction, error) {
	var (
		i       contact.Interaction
		deleted sql.NullInt64
	)
	err := row.Scan(&i.ID, &i.ContactID, &i.Impulse, &i.Content, &i.Date, &i.TagNames, &i.CreatedAt, &deleted)
	if err != nil {
		return nil, err
	}
	i.DeletedAt = fromNullInt64(deleted)
	return &i, nil
}
