package ops

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/errors"
	"github.com/hpungsan/orbit/internal/logging"
)

// Indexer receives a signal after a mutation changes a contact's
// display-relevant fields (name, artifacts, tags, archival state).
type Indexer interface {
	ReindexContact(ctx context.Context, contactID string)
}

// Session carries the one-slot undo state between Execute calls.
// The zero value is an empty session.
type Session struct {
	Undo *UndoTarget `json:"undo,omitempty"`
}

// UndoTarget is the interaction the next !undo will soft-delete.
type UndoTarget struct {
	InteractionID string `json:"interaction_id"`
	ContactID     string `json:"contact_id"`
}

// CanUndo reports whether an undo target is tracked.
func (s Session) CanUndo() bool {
	return s.Undo != nil
}

// SearchIntent is what a search command asks the caller to show.
// Exactly one of ContactID or ConstellationID is set.
type SearchIntent struct {
	ContactID       string `json:"contact_id,omitempty"`
	ConstellationID string `json:"constellation_id,omitempty"`
	Query           string `json:"query"`
}

// Result is the outcome of executing one command. Message is always safe to
// show verbatim.
type Result struct {
	Success               bool              `json:"success"`
	Message               string            `json:"message"`
	AffectedContact       *ContactRef       `json:"affected_contact,omitempty"`
	AffectedConstellation *ConstellationRef `json:"affected_constellation,omitempty"`

	// RequiresConversionPrompt is the exact command to resubmit to confirm a
	// single-value to list artifact conversion.
	RequiresConversionPrompt command.Command `json:"requires_conversion_prompt,omitempty"`

	Search *SearchIntent `json:"search,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. Nil means no logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.log = logging.OrNop(l) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIndexer registers the reindex collaborator.
func WithIndexer(i Indexer) Option {
	return func(e *Executor) { e.indexer = i }
}

// WithValidator registers the validation collaborator.
func WithValidator(v Validator) Option {
	return func(e *Executor) { e.validator = v }
}

// WithDefaultOrbit sets the orbit given to contacts created without one.
func WithDefaultOrbit(orbit int) Option {
	return func(e *Executor) { e.defaultOrbit = orbit }
}

// Executor applies commands and management operations to the store.
// All writes are serialized by a single lock.
type Executor struct {
	mu           sync.Mutex
	db           *sql.DB
	log          *zap.Logger
	now          func() time.Time
	indexer      Indexer
	validator    Validator
	defaultOrbit int
}

// NewExecutor builds an Executor over database.
func NewExecutor(database *sql.DB, opts ...Option) *Executor {
	e := &Executor{
		db:           database,
		log:          zap.NewNop(),
		now:          time.Now,
		validator:    NewLimitValidator(nil),
		defaultOrbit: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DB returns the underlying database for read-only queries.
func (e *Executor) DB() *sql.DB {
	return e.db
}

// outcome is what a handler hands back to Execute.
type outcome struct {
	result    Result
	undo      *UndoTarget // replaces the undo slot when non-nil
	clearUndo bool
	reindex   []string
}

// Run parses line and executes it.
func (e *Executor) Run(ctx context.Context, sess Session, line string) (Result, Session) {
	return e.Execute(ctx, sess, command.Parse(line))
}

// Execute applies cmd and returns the result with the updated session.
// Each command commits fully or not at all. Store faults come back as a
// failed Result, never as a partial write.
func (e *Executor) Execute(ctx context.Context, sess Session, cmd command.Command) (Result, Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cmd == nil {
		return failure("empty command"), sess
	}

	out, err := e.dispatch(ctx, sess, cmd)
	if err != nil {
		e.log.Error("command failed",
			zap.String("kind", string(cmd.Kind())),
			zap.String("command", cmd.String()),
			zap.Error(err))
		return failure("could not complete command: %s", errors.As(err).Message), sess
	}

	if out.undo != nil {
		sess.Undo = out.undo
	} else if out.clearUndo {
		sess.Undo = nil
	}
	e.signalReindex(ctx, out.reindex)

	e.log.Debug("command executed",
		zap.String("kind", string(cmd.Kind())),
		zap.Bool("success", out.result.Success))
	return out.result, sess
}

func (e *Executor) dispatch(ctx context.Context, sess Session, cmd command.Command) (outcome, error) {
	switch c := cmd.(type) {
	case command.Invalid:
		return outcome{result: failure("%s", c.Reason)}, nil
	case command.Undo:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.undo(ctx, tx, sess) })
	case command.ArchiveContact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.setArchived(ctx, tx, c.ContactName, true) })
	case command.RestoreContact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.setArchived(ctx, tx, c.ContactName, false) })
	case command.LogInteraction:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.logInteraction(ctx, tx, c) })
	case command.LogConstellationInteraction:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.logConstellationInteraction(ctx, tx, c) })
	case command.SetArtifact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.setArtifact(ctx, tx, c) })
	case command.AppendArtifact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.appendArtifact(ctx, tx, c) })
	case command.RemoveArtifact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.removeArtifact(ctx, tx, c) })
	case command.DeleteArtifact:
		return e.inTx(ctx, func(tx *sql.Tx) (outcome, error) { return e.deleteArtifact(ctx, tx, c) })
	case command.SearchContact:
		return e.searchContact(ctx, c)
	case command.SearchConstellation:
		return e.searchConstellation(ctx, c)
	default:
		return outcome{result: failure("unsupported command %q", cmd.Kind())}, nil
	}
}

// inTx runs fn in a transaction, committing only a successful outcome.
func (e *Executor) inTx(ctx context.Context, fn func(tx *sql.Tx) (outcome, error)) (outcome, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return outcome{}, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	out, err := fn(tx)
	if err != nil {
		return outcome{}, err
	}
	if !out.result.Success {
		return out, nil
	}
	if err := tx.Commit(); err != nil {
		return outcome{}, errors.NewInternal(err)
	}
	return out, nil
}

// mutate runs a management write under the executor lock in a transaction.
func (e *Executor) mutate(ctx context.Context, fn func(tx *sql.Tx) ([]string, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	reindex, err := fn(tx)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	e.signalReindex(ctx, reindex)
	return nil
}

func (e *Executor) signalReindex(ctx context.Context, ids []string) {
	if e.indexer == nil {
		return
	}
	for _, id := range ids {
		e.indexer.ReindexContact(ctx, id)
	}
}

func (e *Executor) validateArtifact(key, value string) error {
	if e.validator == nil {
		return nil
	}
	return e.validator.ValidateArtifactValue(key, value)
}

func (e *Executor) validateName(name string) error {
	if e.validator == nil {
		return nil
	}
	return e.validator.ValidateContactName(name)
}

// notFound turns a NOT_FOUND store error into a failed result and passes
// every other error through.
func notFound(err error, format string, args ...any) (outcome, error) {
	if errors.Is(err, errors.ErrNotFound) {
		return outcome{result: failure(format, args...)}, nil
	}
	return outcome{}, err
}
