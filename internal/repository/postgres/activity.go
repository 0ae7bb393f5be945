package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type activityRepository struct {
	db sqlx.ExtContext
}

const activityColumns = `id, action, details, created_at, published_at`

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	details := entry.Details
	if details == nil {
		details = model.JSONMap{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}
	entry.RawDetails = raw

	query := `INSERT INTO activity_logs (id, action, details, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.Action, raw, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_logs ORDER BY created_at DESC LIMIT $1`
	return r.selectEntries(ctx, query, limit)
}

// ListUnpublished skips rows locked by another publisher so several
// workers can drain the table concurrently.
func (r *activityRepository) ListUnpublished(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activity_logs
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	return r.selectEntries(ctx, query, limit)
}

func (r *activityRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	query := `UPDATE activity_logs SET published_at = $1 WHERE id = ANY($2::uuid[])`
	if _, err := r.db.ExecContext(ctx, query, at, pq.Array(strs)); err != nil {
		return fmt.Errorf("failed to mark activity published: %w", err)
	}
	return nil
}

func (r *activityRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity logs: %w", err)
	}
	return res.RowsAffected()
}

func (r *activityRepository) selectEntries(ctx context.Context, query string, args ...interface{}) ([]*model.ActivityLog, error) {
	var entries []*model.ActivityLog
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	for _, e := range entries {
		if len(e.RawDetails) == 0 {
			continue
		}
		if err := json.Unmarshal(e.RawDetails, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to decode activity details: %w", err)
		}
	}
	return entries, nil
}
