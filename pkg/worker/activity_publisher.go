package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/messaging"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
)

const MessageTypeActivity = "activity.logged"

type ActivityPublisherConfig struct {
	Channel       string
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// ActivityPublisher fans activity rows out to the broker and stamps them
// published. Rows that still fail after retries stay pending for the next
// poll.
type ActivityPublisher struct {
	store   repository.Store
	broker  messaging.Broker
	config  ActivityPublisherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewActivityPublisher(
	store repository.Store,
	broker messaging.Broker,
	config ActivityPublisherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ActivityPublisher {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.Channel == "" {
		panic("Channel must not be empty")
	}

	return &ActivityPublisher{
		store:   store,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (p *ActivityPublisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting activity publisher", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down activity publisher")
			return
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.logger.Error(err, "Failed to publish activity")
			}
		}
	}
}

// PublishPending publishes one batch and returns how many rows were
// marked published.
func (p *ActivityPublisher) PublishPending(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.ActivityPublishLatency)
	defer timer.ObserveDuration()

	var published int
	err := p.store.WithTx(ctx, func(repos repository.Repositories) error {
		entries, err := repos.Activity.ListUnpublished(ctx, p.config.BatchSize)
		if err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("list_unpublished_activity", "error").Inc()
			return fmt.Errorf("failed to list unpublished activity: %w", err)
		}
		p.metrics.DatabaseOperations.WithLabelValues("list_unpublished_activity", "success").Inc()

		ids := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			if err := p.publish(ctx, entry); err != nil {
				p.metrics.ActivityPublishFailed.Inc()
				p.logger.Error(err, "Failed to publish activity entry", "activity_id", entry.ID.String())
				continue
			}
			p.metrics.ActivityPublished.Inc()
			ids = append(ids, entry.ID)
		}
		p.metrics.ActivityPendingEntries.Set(float64(len(entries) - len(ids)))

		if len(ids) == 0 {
			return nil
		}
		if err := repos.Activity.MarkPublished(ctx, ids, p.now()); err != nil {
			return fmt.Errorf("failed to mark activity published: %w", err)
		}
		published = len(ids)
		return nil
	})
	return published, err
}

func (p *ActivityPublisher) publish(ctx context.Context, entry *model.ActivityLog) error {
	msg := messaging.Message{
		ID:   entry.ID.String(),
		Type: MessageTypeActivity,
		Payload: model.JSONMap{
			"action":    entry.Action,
			"details":   entry.Details,
			"createdAt": entry.CreatedAt,
		},
	}
	attempt := 0
	return retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		if attempt > 0 {
			p.metrics.ActivityRetries.Inc()
		}
		attempt++
		return p.broker.Publish(ctx, p.config.Channel, msg)
	})
}

// Helper retry function
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
