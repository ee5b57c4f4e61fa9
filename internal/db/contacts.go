package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

const contactColumns = `id, name, name_norm, notes, archived, target_orbit,
	last_contact_at, created_at, updated_at`

// ContactFilters narrows ListContacts.
type ContactFilters struct {
	IncludeArchived bool
	Orbit           *int
}

// InsertContact stores a new contact. A name collision on the normalized
// name returns NAME_ALREADY_EXISTS.
func InsertContact(ctx context.Context, q DBTX, c *contact.Contact) error {
	query := `
		INSERT INTO contacts (
			id, name, name_norm, notes, archived, target_orbit,
			last_contact_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var last sql.NullInt64
	if c.LastContactAt != nil {
		last = sql.NullInt64{Int64: *c.LastContactAt, Valid: true}
	}

	_, err := q.ExecContext(ctx, query,
		c.ID, c.Name, c.NameNorm, c.Notes, boolToInt(c.Archived), c.TargetOrbit,
		last, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewNameAlreadyExists("contact", c.Name)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetContactByID retrieves a contact by its ULID, archived or not.
func GetContactByID(ctx context.Context, q DBTX, id string) (*contact.Contact, error) {
	row := q.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("contact", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// FindContactExact finds the contact whose normalized name equals nameNorm.
func FindContactExact(ctx context.Context, q DBTX, nameNorm string, includeArchived bool) (*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE name_norm = ?`
	if !includeArchived {
		query += " AND archived = 0"
	}

	row := q.QueryRowContext(ctx, query, nameNorm)
	c, err := scanContact(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("contact", nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// FindContactPrefix returns the first contact, ordered by normalized name
// then ID, whose normalized name starts with prefix.
func FindContactPrefix(ctx context.Context, q DBTX, prefix string, includeArchived bool) (*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE substr(name_norm, 1, length(?)) = ?`
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY name_norm, id LIMIT 1"

	row := q.QueryRowContext(ctx, query, prefix, prefix)
	c, err := scanContact(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("contact", prefix)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// UpdateContact writes the mutable fields of c: name, notes, archived flag,
// target orbit and updated_at. The cached last-contact date is owned by
// RefreshLastContact.
func UpdateContact(ctx context.Context, q DBTX, c *contact.Contact) error {
	query := `
		UPDATE contacts
		SET name = ?, name_norm = ?, notes = ?, archived = ?, target_orbit = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		c.Name, c.NameNorm, c.Notes, boolToInt(c.Archived), c.TargetOrbit, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewNameAlreadyExists("contact", c.Name)
		}
		return errors.NewInternal(err)
	}
	return requireAffected(result, "contact", c.ID)
}

// TouchContact bumps a contact's updated_at.
func TouchContact(ctx context.Context, q DBTX, id string, now int64) error {
	result, err := q.ExecContext(ctx, `UPDATE contacts SET updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "contact", id)
}

// DeleteContact hard-deletes a contact. Interactions, artifacts and
// memberships go with it through ON DELETE CASCADE.
func DeleteContact(ctx context.Context, q DBTX, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "contact", id)
}

// RefreshLastContact recomputes the cached last-contact date from the
// contact's non-deleted interactions and returns the new value.
func RefreshLastContact(ctx context.Context, q DBTX, contactID string) (*int64, error) {
	query := `
		UPDATE contacts
		SET last_contact_at = (
			SELECT MAX(date) FROM interactions
			WHERE contact_id = ? AND deleted_at IS NULL
		)
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query, contactID, contactID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := requireAffected(result, "contact", contactID); err != nil {
		return nil, err
	}

	var last sql.NullInt64
	if err := q.QueryRowContext(ctx, `SELECT last_contact_at FROM contacts WHERE id = ?`, contactID).Scan(&last); err != nil {
		return nil, errors.NewInternal(err)
	}
	return fromNullInt64(last), nil
}

// ListContacts returns contacts ordered by normalized name, plus the total
// matching count. A limit <= 0 returns every match.
func ListContacts(ctx context.Context, q DBTX, filters ContactFilters, limit, offset int) ([]contact.Contact, int, error) {
	where := " WHERE 1=1"
	var args []any
	if !filters.IncludeArchived {
		where += " AND archived = 0"
	}
	if filters.Orbit != nil {
		where += " AND target_orbit = ?"
		args = append(args, *filters.Orbit)
	}

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where + ` ORDER BY name_norm, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(offset, 0))
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	contacts := []contact.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return contacts, total, nil
}

func scanContact(row scanner) (*contact.Contact, error) {
	var (
		c        contact.Contact
		archived int
		last     sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.NameNorm, &c.Notes, &archived, &c.TargetOrbit,
		&last, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Archived = archived != 0
	c.LastContactAt = fromNullInt64(last)
	return &c, nil
}

// requireAffected maps a zero-row write to NOT_FOUND.
func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(kind, id)
	}
	return nil
}
