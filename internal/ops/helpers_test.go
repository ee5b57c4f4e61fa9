package ops

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
)

var testNow = time.Date(2026, 3, 31, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// recordingIndexer collects reindex signals.
type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingIndexer) ReindexContact(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recordingIndexer) reset() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.ids
	r.ids = nil
	return ids
}

func newTestExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	base := []Option{WithClock(fixedClock), WithLogger(zaptest.NewLogger(t))}
	return NewExecutor(database, append(base, opts...)...)
}

func mustCreateContact(t *testing.T, e *Executor, name string) *contact.Contact {
	t.Helper()
	c, err := e.CreateContact(context.Background(), CreateContactInput{Name: name})
	require.NoError(t, err)
	return c
}

// run executes line and fails the test unless the outcome matches ok.
func run(t *testing.T, e *Executor, sess Session, line string, ok bool) (Result, Session) {
	t.Helper()
	res, next := e.Run(context.Background(), sess, line)
	require.Equal(t, ok, res.Success, "%q: %s", line, res.Message)
	return res, next
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
