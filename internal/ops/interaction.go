package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/errors"
)

const backdateLayout = "Jan 2, 2006"

func (e *Executor) logInteraction(ctx context.Context, tx *sql.Tx, c command.LogInteraction) (outcome, error) {
	if strings.TrimSpace(c.Impulse) == "" {
		return outcome{result: failure("impulse is required")}, nil
	}
	target, err := ResolveContact(ctx, tx, c.ContactName, false)
	if err != nil {
		return notFound(err, "contact not found: %s", c.ContactName)
	}

	now := e.now()
	date, backdated := resolveDate(c.TimeModifier, now)

	i, err := e.insertInteraction(ctx, tx, target.ID, c.Impulse, c.Tags, c.Note, date, now)
	if err != nil {
		return outcome{}, err
	}
	if err := e.registerTags(ctx, tx, c.Tags, now); err != nil {
		return outcome{}, err
	}

	msg := fmt.Sprintf("Logged %s with %s", strings.TrimSpace(c.Impulse), target.Name)
	if backdated {
		msg += " on " + date.Format(backdateLayout)
	}
	return outcome{
		result:  Result{Success: true, Message: msg, AffectedContact: contactRef(target)},
		undo:    &UndoTarget{InteractionID: i.ID, ContactID: target.ID},
		reindex: []string{target.ID},
	}, nil
}

// logConstellationInteraction fans one interaction out to every active
// member inside the caller's transaction, so members are all logged or
// none are. The undo slot tracks the first member's interaction.
func (e *Executor) logConstellationInteraction(ctx context.Context, tx *sql.Tx, c command.LogConstellationInteraction) (outcome, error) {
	if strings.TrimSpace(c.Impulse) == "" {
		return outcome{result: failure("impulse is required")}, nil
	}
	k, err := ResolveConstellation(ctx, tx, c.ConstellationName)
	if err != nil {
		return notFound(err, "constellation not found: %s", c.ConstellationName)
	}

	members, err := db.ActiveMembers(ctx, tx, k.ID)
	if err != nil {
		return outcome{}, err
	}
	if len(members) == 0 {
		return outcome{result: failure("constellation %s has no active members", k.Name)}, nil
	}

	now := e.now()
	date, backdated := resolveDate(c.TimeModifier, now)

	var first *UndoTarget
	ids := make([]string, 0, len(members))
	for _, m := range members {
		i, err := e.insertInteraction(ctx, tx, m.ID, c.Impulse, c.Tags, c.Note, date, now)
		if err != nil {
			return outcome{}, fmt.Errorf("member %s: %w", m.Name, err)
		}
		if first == nil {
			first = &UndoTarget{InteractionID: i.ID, ContactID: m.ID}
		}
		ids = append(ids, m.ID)
	}
	if err := e.registerTags(ctx, tx, c.Tags, now); err != nil {
		return outcome{}, err
	}

	noun := "members"
	if len(members) == 1 {
		noun = "member"
	}
	msg := fmt.Sprintf("Logged %s with %d %s of %s", strings.TrimSpace(c.Impulse), len(members), noun, k.Name)
	if backdated {
		msg += " on " + date.Format(backdateLayout)
	}
	return outcome{
		result:  Result{Success: true, Message: msg, AffectedConstellation: constellationRef(k)},
		undo:    first,
		reindex: ids,
	}, nil
}

func (e *Executor) undo(ctx context.Context, tx *sql.Tx, sess Session) (outcome, error) {
	if sess.Undo == nil {
		return outcome{result: failure("nothing to undo")}, nil
	}

	// The slot is spent whatever happens next.
	gone := outcome{result: failure("nothing to undo"), clearUndo: true}

	i, err := db.GetInteraction(ctx, tx, sess.Undo.InteractionID)
	if errors.Is(err, errors.ErrNotFound) {
		return gone, nil
	}
	if err != nil {
		return outcome{}, err
	}
	if i.IsDeleted() {
		return gone, nil
	}
	target, err := db.GetContactByID(ctx, tx, i.ContactID)
	if errors.Is(err, errors.ErrNotFound) {
		return gone, nil
	}
	if err != nil {
		return outcome{}, err
	}

	if err := db.SoftDeleteInteraction(ctx, tx, i.ID, e.now().Unix()); err != nil {
		return outcome{}, err
	}
	if _, err := db.RefreshLastContact(ctx, tx, target.ID); err != nil {
		return outcome{}, err
	}

	return outcome{
		result: Result{
			Success:         true,
			Message:         fmt.Sprintf("Undid %s with %s", i.Impulse, target.Name),
			AffectedContact: contactRef(target),
		},
		clearUndo: true,
		reindex:   []string{target.ID},
	}, nil
}

// insertInteraction creates one interaction and refreshes the contact's
// cached last-contact date.
func (e *Executor) insertInteraction(ctx context.Context, tx *sql.Tx, contactID, impulse string, tags []string, note *string, date, now time.Time) (*contact.Interaction, error) {
	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	i := &contact.Interaction{
		ID:        id,
		ContactID: contactID,
		Impulse:   strings.TrimSpace(impulse),
		Date:      date.Unix(),
		TagNames:  contact.JoinTags(tags),
		CreatedAt: now.Unix(),
	}
	if note != nil {
		i.Content = *note
	}

	if err := db.InsertInteraction(ctx, tx, i); err != nil {
		return nil, err
	}
	if _, err := db.RefreshLastContact(ctx, tx, contactID); err != nil {
		return nil, err
	}
	return i, nil
}

// registerTags adds each tag name to the autocomplete catalog.
func (e *Executor) registerTags(ctx context.Context, tx *sql.Tx, tags []string, now time.Time) error {
	for _, name := range contact.SplitTags(contact.JoinTags(tags)) {
		id, err := generateULID(now)
		if err != nil {
			return errors.NewInternal(err)
		}
		tag := &contact.Tag{ID: id, Name: name, NameNorm: contact.Normalize(name), CreatedAt: now.Unix()}
		if _, err := db.RegisterTag(ctx, tx, tag); err != nil {
			return err
		}
	}
	return nil
}

func resolveDate(modifier *string, now time.Time) (time.Time, bool) {
	if modifier == nil {
		return now, false
	}
	return command.ResolveTime(*modifier, now)
}
