package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

// artifactKey normalizes the key of a set or append. Commands built outside
// the parser may still carry a "category/key" prefix.
func artifactKey(rawKey string, category *string) (*string, string) {
	key := strings.TrimSpace(rawKey)
	if category == nil {
		if strings.Contains(key, "/") {
			return command.SplitArtifactKey(key)
		}
		return nil, key
	}
	if cat := strings.TrimSpace(*category); cat != "" {
		return &cat, key
	}
	return nil, key
}

// findArtifact returns the contact's artifact for key, or nil when absent.
func findArtifact(ctx context.Context, tx *sql.Tx, contactID, key string) (*contact.Artifact, error) {
	a, err := db.GetArtifact(ctx, tx, contactID, contact.Normalize(key))
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (e *Executor) newArtifact(contactID, key string, category *string, value contact.ArtifactValue) (*contact.Artifact, error) {
	now := e.now()
	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &contact.Artifact{
		ID:        id,
		ContactID: contactID,
		Key:       contact.CleanName(key),
		KeyNorm:   contact.Normalize(key),
		Value:     value,
		Category:  category,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}, nil
}

// artifactTarget resolves the contact for an artifact command and validates
// key and value. A nil contact with a nil error means the outcome is set.
func (e *Executor) artifactTarget(ctx context.Context, tx *sql.Tx, name, key, value string, checkValue bool) (*contact.Contact, *outcome, error) {
	if key == "" {
		return nil, &outcome{result: failure("artifact key is required")}, nil
	}
	target, err := ResolveContact(ctx, tx, name, false)
	if err != nil {
		out, err := notFound(err, "contact not found: %s", name)
		return nil, &out, err
	}
	if checkValue {
		if strings.TrimSpace(value) == "" {
			return nil, &outcome{result: failure("artifact %q needs a value", key)}, nil
		}
		if err := e.validateArtifact(key, value); err != nil {
			return nil, &outcome{result: failure("%s", errors.As(err).Message)}, nil
		}
	}
	return target, nil, nil
}

func (e *Executor) setArtifact(ctx context.Context, tx *sql.Tx, c command.SetArtifact) (outcome, error) {
	category, key := artifactKey(c.Key, c.Category)
	value := strings.TrimSpace(c.Value)
	target, early, err := e.artifactTarget(ctx, tx, c.ContactName, key, value, true)
	if target == nil {
		return *early, err
	}

	a, err := findArtifact(ctx, tx, target.ID, key)
	if err != nil {
		return outcome{}, err
	}
	now := e.now().Unix()
	if a == nil {
		a, err = e.newArtifact(target.ID, key, category, contact.Scalar(value))
		if err != nil {
			return outcome{}, err
		}
		if err := db.InsertArtifact(ctx, tx, a); err != nil {
			return outcome{}, err
		}
	} else {
		a.Value = contact.Scalar(value)
		if category != nil {
			a.Category = category
		}
		a.UpdatedAt = now
		if err := db.UpdateArtifact(ctx, tx, a); err != nil {
			return outcome{}, err
		}
	}
	if err := db.TouchContact(ctx, tx, target.ID, now); err != nil {
		return outcome{}, err
	}

	return artifactDone(target, "Set %s for %s", a.Key, target.Name), nil
}

func (e *Executor) appendArtifact(ctx context.Context, tx *sql.Tx, c command.AppendArtifact) (outcome, error) {
	category, key := artifactKey(c.Key, c.Category)
	value := strings.TrimSpace(c.Value)
	target, early, err := e.artifactTarget(ctx, tx, c.ContactName, key, value, true)
	if target == nil {
		return *early, err
	}

	a, err := findArtifact(ctx, tx, target.ID, key)
	if err != nil {
		return outcome{}, err
	}

	if a != nil && !a.Value.IsList() && !c.ForceConvert {
		retry := c
		retry.ForceConvert = true
		return outcome{result: Result{
			Success:                  false,
			Message:                  fmt.Sprintf("%s for %s holds a single value; confirm to convert it to a list", a.Key, target.Name),
			AffectedContact:          contactRef(target),
			RequiresConversionPrompt: retry,
		}}, nil
	}

	now := e.now().Unix()
	if a == nil {
		a, err = e.newArtifact(target.ID, key, category, contact.List{value})
		if err != nil {
			return outcome{}, err
		}
		if err := db.InsertArtifact(ctx, tx, a); err != nil {
			return outcome{}, err
		}
	} else {
		a.Value = contact.List(append(a.Value.Items(), value))
		if category != nil {
			a.Category = category
		}
		a.UpdatedAt = now
		if err := db.UpdateArtifact(ctx, tx, a); err != nil {
			return outcome{}, err
		}
	}
	if err := db.TouchContact(ctx, tx, target.ID, now); err != nil {
		return outcome{}, err
	}

	return artifactDone(target, "Added %s to %s for %s", value, a.Key, target.Name), nil
}

func (e *Executor) removeArtifact(ctx context.Context, tx *sql.Tx, c command.RemoveArtifact) (outcome, error) {
	key := strings.TrimSpace(c.Key)
	value := strings.TrimSpace(c.Value)
	target, early, err := e.artifactTarget(ctx, tx, c.ContactName, key, value, false)
	if target == nil {
		return *early, err
	}

	a, err := findArtifact(ctx, tx, target.ID, key)
	if err != nil {
		return outcome{}, err
	}
	if a == nil {
		return outcome{result: failure("%s has no artifact %q", target.Name, key)}, nil
	}

	list, ok := a.Value.(contact.List)
	if !ok {
		return artifactDone(target, "%s for %s holds a single value; nothing removed", a.Key, target.Name), nil
	}

	kept := make(contact.List, 0, len(list))
	for _, item := range list {
		if !strings.EqualFold(item, value) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(list) {
		return artifactDone(target, "%s is not in %s for %s", value, a.Key, target.Name), nil
	}

	now := e.now().Unix()
	a.Value = kept
	a.UpdatedAt = now
	if err := db.UpdateArtifact(ctx, tx, a); err != nil {
		return outcome{}, err
	}
	if err := db.TouchContact(ctx, tx, target.ID, now); err != nil {
		return outcome{}, err
	}
	return artifactDone(target, "Removed %s from %s for %s", value, a.Key, target.Name), nil
}

func (e *Executor) deleteArtifact(ctx context.Context, tx *sql.Tx, c command.DeleteArtifact) (outcome, error) {
	key := strings.TrimSpace(c.Key)
	target, early, err := e.artifactTarget(ctx, tx, c.ContactName, key, "", false)
	if target == nil {
		return *early, err
	}

	a, err := findArtifact(ctx, tx, target.ID, key)
	if err != nil {
		return outcome{}, err
	}
	if a == nil {
		return outcome{result: failure("%s has no artifact %q", target.Name, key)}, nil
	}

	if err := db.DeleteArtifact(ctx, tx, a.ID); err != nil {
		return outcome{}, err
	}
	if err := db.TouchContact(ctx, tx, target.ID, e.now().Unix()); err != nil {
		return outcome{}, err
	}
	return artifactDone(target, "Deleted %s for %s", a.Key, target.Name), nil
}

func artifactDone(target *contact.Contact, format string, args ...any) outcome {
	return outcome{
		result: Result{
			Success:         true,
			Message:         fmt.Sprintf(format, args...),
			AffectedContact: contactRef(target),
		},
		reindex: []string{target.ID},
	}
}
