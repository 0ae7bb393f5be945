package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
)

func TestCleanupRemovesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := memory.NewStore().Repositories().Activity

	for _, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, 10 * 24 * time.Hour, 0} {
		require.NoError(t, repo.Create(ctx, &model.ActivityLog{Action: "x", CreatedAt: now.Add(-age)}))
	}

	m := metrics.New(prometheus.NewRegistry(), "test", "")
	w := NewActivityCleanupWorker(repo, 90, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return now }

	rows, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ActivityEntriesPurged))

	left, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
