package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
)

type failingRepo struct{}

func (failingRepo) Create(context.Context, *model.ActivityLog) error { return errors.New("disk full") }
func (failingRepo) ListRecent(context.Context, int) ([]*model.ActivityLog, error) {
	return nil, errors.New("disk full")
}
func (failingRepo) ListUnpublished(context.Context, int) ([]*model.ActivityLog, error) {
	return nil, nil
}
func (failingRepo) MarkPublished(context.Context, []uuid.UUID, time.Time) error { return nil }
func (failingRepo) DeleteBefore(context.Context, time.Time) (int64, error)      { return 0, nil }

func TestLogIsBestEffort(t *testing.T) {
	svc := NewService(failingRepo{}, nil)
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), "Appointment created", model.JSONMap{"customerName": "Ann"})
	})
}

func TestRecentClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Repositories().Activity, nil)

	for i := 0; i < 60; i++ {
		svc.Log(ctx, fmt.Sprintf("entry %d", i), nil)
	}

	entries, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, model.DefaultActivityLimit)
	assert.Equal(t, "entry 59", entries[0].Action)

	entries, err = svc.Recent(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, entries, model.MaxActivityLimit)

	entries, err = svc.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecorderIsSafeForConcurrentUse(t *testing.T) {
	rec := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Log(context.Background(), fmt.Sprintf("entry %d", i), nil)
		}(i)
	}
	wg.Wait()

	assert.Len(t, rec.Entries(), 50)
	assert.Len(t, rec.Actions(), 50)
}
