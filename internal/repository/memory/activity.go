package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type activityRepository struct{ base }

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.do(func(st *state, now time.Time) error {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		st.activity = append(st.activity, *entry)
		return nil
	})
}

// ListRecent walks the append order backwards so equal timestamps still
// come out newest first.
func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	var out []*model.ActivityLog
	err := r.do(func(st *state, _ time.Time) error {
		for i := len(st.activity) - 1; i >= 0 && len(out) < limit; i-- {
			e := st.activity[i]
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

func (r *activityRepository) ListUnpublished(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	var out []*model.ActivityLog
	err := r.do(func(st *state, _ time.Time) error {
		for _, e := range st.activity {
			if len(out) >= limit {
				break
			}
			if e.PublishedAt == nil {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func (r *activityRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return r.do(func(st *state, _ time.Time) error {
		for i := range st.activity {
			if _, ok := want[st.activity[i].ID]; ok {
				t := at
				st.activity[i].PublishedAt = &t
			}
		}
		return nil
	})
}

func (r *activityRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.do(func(st *state, _ time.Time) error {
		kept := st.activity[:0:0]
		for _, e := range st.activity {
			if e.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		st.activity = kept
		return nil
	})
	return removed, err
}
