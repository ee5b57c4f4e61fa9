package db

import (
	"context"
	"fmt"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

// RegisterTag adds a tag to the catalog if its normalized name is new.
// Reports whether a row was created.
func RegisterTag(ctx context.Context, q DBTX, t *contact.Tag) (bool, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO tags (id, name, name_norm, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name_norm) DO NOTHING
	`, t.ID, t.Name, t.NameNorm, t.CreatedAt)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListTags returns catalog entries whose normalized name starts with
// prefixNorm, ordered by name. A limit <= 0 returns all.
func ListTags(ctx context.Context, q DBTX, prefixNorm string, limit int) ([]contact.Tag, error) {
	query := `SELECT id, name, name_norm, created_at FROM tags
		WHERE substr(name_norm, 1, length(?)) = ?
		ORDER BY name_norm`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.QueryContext(ctx, query, prefixNorm, prefixNorm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	tags := []contact.Tag{}
	for rows.Next() {
		var t contact.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.NameNorm, &t.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tags, nil
}
