package activity

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/pkg/logger"
)

// Logger is the write side consumed by the engine and the queue.
type Logger interface {
	Log(ctx context.Context, action string, details model.JSONMap)
}

type Service struct {
	repo   repository.ActivityRepository
	logger *logger.Logger
}

func NewService(repo repository.ActivityRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, logger: log}
}

// Log appends an entry. Failures are logged and swallowed so they never
// turn a committed operation into an error.
func (s *Service) Log(ctx context.Context, action string, details model.JSONMap) {
	entry := &model.ActivityLog{Action: action, Details: details}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.WithContext(ctx).Warn("failed to write activity log",
			"action", action,
			"error", err.Error())
	}
}

// Recent returns up to limit entries, newest first. limit defaults to 10
// and is capped at 50.
func (s *Service) Recent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	entries, err := s.repo.ListRecent(ctx, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return model.DefaultActivityLimit
	}
	if limit > model.MaxActivityLimit {
		return model.MaxActivityLimit
	}
	return limit
}

// Recorder collects entries in memory. Tests use it to assert on what was
// logged. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

func (r *Recorder) Log(_ context.Context, action string, details model.JSONMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, model.ActivityLog{Action: action, Details: details})
}

// Entries returns a copy of the recorded entries in order.
func (r *Recorder) Entries() []model.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityLog, len(r.entries))
	copy(out, r.entries)
	return out
}

// Actions returns the recorded action strings in order.
func (r *Recorder) Actions() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}
