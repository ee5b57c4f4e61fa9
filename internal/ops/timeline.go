package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/orbit/internal/db"
)

// TimelineOutput contains the result of the Timeline operation.
type TimelineOutput struct {
	Items []db.TimelineEntry `json:"items"`
}

// Timeline returns the most recent non-deleted interactions across all
// contacts, newest first.
func Timeline(ctx context.Context, database *sql.DB, limit int) (*TimelineOutput, error) {
	entries, err := db.RecentInteractions(ctx, database, clampLimit(limit, DefaultTimelineLimit, MaxTimelineLimit))
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Items: entries}, nil
}
