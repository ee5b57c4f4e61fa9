package ops

import (
	"context"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// ResolveContact maps a typed name to a contact: exact normalized match
// first, then the first prefix match ordered by name. An exact match wins
// even when a prefix match sorts earlier.
func ResolveContact(ctx context.Context, q db.DBTX, name string, includeArchived bool) (*contact.Contact, error) {
	norm := contact.Normalize(name)
	if norm == "" {
		return nil, errors.NewNotFound("contact", name)
	}

	c, err := db.FindContactExact(ctx, q, norm, includeArchived)
	if err == nil || !errors.Is(err, errors.ErrNotFound) {
		return c, err
	}

	c, err = db.FindContactPrefix(ctx, q, norm, includeArchived)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.NewNotFound("contact", name)
	}
	return c, err
}

// ResolveConstellation maps a typed name to a constellation, exact then prefix.
func ResolveConstellation(ctx context.Context, q db.DBTX, name string) (*contact.Constellation, error) {
	norm := contact.Normalize(name)
	if norm == "" {
		return nil, errors.NewNotFound("constellation", name)
	}

	k, err := db.FindConstellationExact(ctx, q, norm)
	if err == nil || !errors.Is(err, errors.ErrNotFound) {
		return k, err
	}

	k, err = db.FindConstellationPrefix(ctx, q, norm)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.NewNotFound("constellation", name)
	}
	return k, err
}

// lookupContact addresses a contact for the management operations. By-name
// lookups use exact matching when exact is set (destructive operations) and
// fuzzy resolution otherwise. Archived contacts are always included.
func lookupContact(ctx context.Context, q db.DBTX, ref *Ref, exact bool) (*contact.Contact, error) {
	if ref.ByID {
		return db.GetContactByID(ctx, q, ref.ID)
	}
	if exact {
		return db.FindContactExact(ctx, q, ref.Name, true)
	}
	return ResolveContact(ctx, q, ref.Name, true)
}

// lookupConstellation addresses a constellation for the management operations.
func lookupConstellation(ctx context.Context, q db.DBTX, ref *Ref, exact bool) (*contact.Constellation, error) {
	if ref.ByID {
		return db.GetConstellationByID(ctx, q, ref.ID)
	}
	if exact {
		return db.FindConstellationExact(ctx, q, ref.Name)
	}
	return ResolveConstellation(ctx, q, ref.Name)
}
