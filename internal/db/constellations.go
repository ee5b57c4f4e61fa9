package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

const constellationColumns = `id, name, name_norm, created_at, updated_at`

// ConstellationSummary is a constellation with its member counts.
type ConstellationSummary struct {
	Constellation contact.Constellation
	Members       int
	ActiveMembers int
}

// InsertConstellation stores a new constellation. A name collision on the
// normalized name returns NAME_ALREADY_EXISTS.
func InsertConstellation(ctx context.Context, q DBTX, c *contact.Constellation) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO constellations (id, name, name_norm, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.NameNorm, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewNameAlreadyExists("constellation", c.Name)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetConstellationByID retrieves a constellation by ULID.
func GetConstellationByID(ctx context.Context, q DBTX, id string) (*contact.Constellation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+constellationColumns+` FROM constellations WHERE id = ?`, id)
	return constellationFromRow(row, id)
}

// FindConstellationExact finds the constellation whose normalized name equals nameNorm.
func FindConstellationExact(ctx context.Context, q DBTX, nameNorm string) (*contact.Constellation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+constellationColumns+` FROM constellations WHERE name_norm = ?`, nameNorm)
	return constellationFromRow(row, nameNorm)
}

// FindConstellationPrefix returns the first constellation, ordered by
// normalized name then ID, whose normalized name starts with prefix.
func FindConstellationPrefix(ctx context.Context, q DBTX, prefix string) (*contact.Constellation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+constellationColumns+` FROM constellations
		WHERE substr(name_norm, 1, length(?)) = ?
		ORDER BY name_norm, id LIMIT 1`, prefix, prefix)
	return constellationFromRow(row, prefix)
}

// DeleteConstellation hard-deletes a constellation and its memberships.
// Member contacts are untouched.
func DeleteConstellation(ctx context.Context, q DBTX, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM constellations WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "constellation", id)
}

// ListConstellations returns every constellation with member counts,
// ordered by normalized name.
func ListConstellations(ctx context.Context, q DBTX) ([]ConstellationSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT k.id, k.name, k.name_norm, k.created_at, k.updated_at,
			COUNT(c.id),
			COALESCE(SUM(CASE WHEN c.archived = 0 THEN 1 ELSE 0 END), 0)
		FROM constellations k
		LEFT JOIN constellation_members m ON m.constellation_id = k.id
		LEFT JOIN contacts c ON c.id = m.contact_id
		GROUP BY k.id
		ORDER BY k.name_norm, k.id
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []ConstellationSummary{}
	for rows.Next() {
		var s ConstellationSummary
		k := &s.Constellation
		if err := rows.Scan(&k.ID, &k.Name, &k.NameNorm, &k.CreatedAt, &k.UpdatedAt, &s.Members, &s.ActiveMembers); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// AddMember links a contact to a constellation. An existing membership
// returns CONFLICT.
func AddMember(ctx context.Context, q DBTX, constellationID, contactID string, now int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO constellation_members (constellation_id, contact_id, added_at)
		VALUES (?, ?, ?)
	`, constellationID, contactID, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("contact is already a member of this constellation")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// RemoveMember unlinks a contact from a constellation.
func RemoveMember(ctx context.Context, q DBTX, constellationID, contactID string) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM constellation_members WHERE constellation_id = ? AND contact_id = ?`,
		constellationID, contactID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "member", contactID)
}

// ListMembers returns a constellation's members ordered by normalized name
// then ID.
func ListMembers(ctx context.Context, q DBTX, constellationID string, includeArchived bool) ([]contact.Contact, error) {
	query := `SELECT c.id, c.name, c.name_norm, c.notes, c.archived, c.target_orbit,
			c.last_contact_at, c.created_at, c.updated_at
		FROM contacts c
		JOIN constellation_members m ON m.contact_id = c.id
		WHERE m.constellation_id = ?`
	if !includeArchived {
		query += " AND c.archived = 0"
	}
	query += " ORDER BY c.name_norm, c.id"

	rows, err := q.QueryContext(ctx, query, constellationID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	members := []contact.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		members = append(members, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return members, nil
}

// ConstellationsForContact returns the constellations a contact belongs to,
// ordered by normalized name.
func ConstellationsForContact(ctx context.Context, q DBTX, contactID string) ([]contact.Constellation, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT k.id, k.name, k.name_norm, k.created_at, k.updated_at
		FROM constellations k
		JOIN constellation_members m ON m.constellation_id = k.id
		WHERE m.contact_id = ?
		ORDER BY k.name_norm, k.id
	`, contactID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []contact.Constellation{}
	for rows.Next() {
		var k contact.Constellation
		if err := rows.Scan(&k.ID, &k.Name, &k.NameNorm, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// ActiveMembers returns a constellation's non-archived members.
func ActiveMembers(ctx context.Context, q DBTX, constellationID string) ([]contact.Contact, error) {
	return ListMembers(ctx, q, constellationID, false)
}

func constellationFromRow(row *sql.Row, identifier string) (*contact.Constellation, error) {
	var c contact.Constellation
	err := row.Scan(&c.ID, &c.Name, &c.NameNorm, &c.CreatedAt, &c.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("constellation", identifier)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &c, nil
}
