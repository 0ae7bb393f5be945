package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/messaging"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
)

type recordingBroker struct {
	mu       sync.Mutex
	channels []string
	messages []messaging.Message
	failures map[string]int
}

func (b *recordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := message.(messaging.Message)
	if b.failures[msg.ID] > 0 {
		b.failures[msg.ID]--
		return errors.New("broker unavailable")
	}
	b.channels = append(b.channels, channel)
	b.messages = append(b.messages, msg)
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBroker) Close() error { return nil }

func newPublisher(t *testing.T, store *memory.Store, broker messaging.Broker) (*ActivityPublisher, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry(), "test", "")
	p := NewActivityPublisher(store, broker, ActivityPublisherConfig{
		Channel:       "appointment.activity",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.Nop(), m)
	return p, m
}

func seed(t *testing.T, store *memory.Store, actions ...string) []*model.ActivityLog {
	t.Helper()
	var out []*model.ActivityLog
	for _, action := range actions {
		entry := &model.ActivityLog{Action: action, Details: model.JSONMap{"k": action}}
		require.NoError(t, store.Repositories().Activity.Create(context.Background(), entry))
		out = append(out, entry)
	}
	return out
}

func TestPublishPendingMarksEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	broker := &recordingBroker{}
	p, m := newPublisher(t, store, broker)
	entries := seed(t, store, "Appointment created", "Appointment cancelled")

	n, err := p.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, broker.messages, 2)
	assert.Equal(t, entries[0].ID.String(), broker.messages[0].ID)
	assert.Equal(t, MessageTypeActivity, broker.messages[0].Type)
	assert.Equal(t, []string{"appointment.activity", "appointment.activity"}, broker.channels)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ActivityPublished))

	n, err = p.PublishPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "published rows are not sent twice")
}

func TestPublishPendingRetriesAndKeepsFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	entries := seed(t, store, "flaky", "down", "fine")
	broker := &recordingBroker{failures: map[string]int{
		entries[0].ID.String(): 1,
		entries[1].ID.String(): 5,
	}}
	p, m := newPublisher(t, store, broker)

	n, err := p.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActivityPublishFailed))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.ActivityRetries), float64(2))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActivityPendingEntries))

	pending, err := store.Repositories().Activity.ListUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entries[1].ID, pending[0].ID)
}

func TestStartStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	p, _ := newPublisher(t, store, messaging.NopBroker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
