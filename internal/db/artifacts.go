package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

const artifactColumns = `id, contact_id, key, key_norm, value, is_array, category, created_at, updated_at`

// GetArtifact finds a contact's artifact by normalized key.
func GetArtifact(ctx context.Context, q DBTX, contactID, keyNorm string) (*contact.Artifact, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE contact_id = ? AND key_norm = ?`,
		contactID, keyNorm)
	a, err := scanArtifact(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("artifact", keyNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return a, nil
}

// InsertArtifact stores a new artifact. A second artifact with the same
// normalized key on one contact returns CONFLICT.
func InsertArtifact(ctx context.Context, q DBTX, a *contact.Artifact) error {
	text, isArray, err := contact.EncodeValue(a.Value)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO artifacts (
			id, contact_id, key, key_norm, value, is_array, category, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		a.ID, a.ContactID, a.Key, a.KeyNorm, text, boolToInt(isArray),
		toNullString(a.Category), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("artifact " + a.Key + " already exists")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateArtifact overwrites value, category and updated_at.
func UpdateArtifact(ctx context.Context, q DBTX, a *contact.Artifact) error {
	text, isArray, err := contact.EncodeValue(a.Value)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		UPDATE artifacts
		SET value = ?, is_array = ?, category = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		text, boolToInt(isArray), toNullString(a.Category), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "artifact", a.ID)
}

// DeleteArtifact hard-deletes an artifact by ID.
func DeleteArtifact(ctx context.Context, q DBTX, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "artifact", id)
}

// ListArtifacts returns a contact's artifacts ordered by category then key.
func ListArtifacts(ctx context.Context, q DBTX, contactID string) ([]contact.Artifact, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE contact_id = ?
		 ORDER BY COALESCE(category, ''), key_norm`, contactID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []contact.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

func scanArtifact(row scanner) (*contact.Artifact, error) {
	var (
		a        contact.Artifact
		text     string
		isArray  int
		category sql.NullString
	)
	err := row.Scan(&a.ID, &a.ContactID, &a.Key, &a.KeyNorm, &text, &isArray, &category, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Value, err = contact.DecodeValue(text, isArray != 0)
	if err != nil {
		return nil, err
	}
	a.Category = fromNullString(category)
	return &a, nil
}
