// Package memory is an in-process implementation of repository.Store.
// Transactions are serialized and roll back by restoring a snapshot taken
// when they begin.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type state struct {
	staff        map[uuid.UUID]model.Staff
	services     map[uuid.UUID]model.Service
	appointments map[uuid.UUID]model.Appointment
	queue        map[uuid.UUID]model.QueueEntry
	users        map[uuid.UUID]model.User
	activity     []model.ActivityLog
}

func newState() state {
	return state{
		staff:        map[uuid.UUID]model.Staff{},
		services:     map[uuid.UUID]model.Service{},
		appointments: map[uuid.UUID]model.Appointment{},
		queue:        map[uuid.UUID]model.QueueEntry{},
		users:        map[uuid.UUID]model.User{},
	}
}

func (s state) clone() state {
	c := state{
		staff:        make(map[uuid.UUID]model.Staff, len(s.staff)),
		services:     make(map[uuid.UUID]model.Service, len(s.services)),
		appointments: make(map[uuid.UUID]model.Appointment, len(s.appointments)),
		queue:        make(map[uuid.UUID]model.QueueEntry, len(s.queue)),
		users:        make(map[uuid.UUID]model.User, len(s.users)),
		activity:     make([]model.ActivityLog, len(s.activity)),
	}
	for k, v := range s.staff {
		c.staff[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.queue {
		c.queue[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	copy(c.activity, s.activity)
	return c
}

// Store keeps every table in memory behind one mutex.
type Store struct {
	mu    sync.Mutex
	state state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// SetClock overrides the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Repositories returns repositories that lock per call.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

// WithTx runs fn with exclusive access to the store. The state is restored
// if fn returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	return fn(s.repositories(true))
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) repositories(inTx bool) repository.Repositories {
	b := base{store: s, inTx: inTx}
	return repository.Repositories{
		Staff:        &staffRepository{b},
		Services:     &serviceRepository{b},
		Appointments: &appointmentRepository{b},
		Queue:        &queueRepository{b},
		Activity:     &activityRepository{b},
		Users:        &userRepository{b},
		Locks:        lockRepository{},
	}
}

type base struct {
	store *Store
	inTx  bool
}

// do runs fn against the live state, taking the mutex unless a
// transaction already holds it.
func (b base) do(fn func(st *state, now time.Time) error) error {
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	return fn(&b.store.state, b.store.now())
}

// Transactions are already serialized, so named locks are no-ops.
type lockRepository struct{}

func (lockRepository) Lock(ctx context.Context, _ string) error {
	return ctx.Err()
}
