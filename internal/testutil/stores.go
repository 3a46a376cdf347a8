// Package testutil provides in-memory stores and a recording publisher for
// service and handler tests.  The stores follow the same ownership rules as
// the MySQL repositories: a task owned by another user is not found.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// UserStore is a thread-safe in-memory user store.  Emails are compared
// case-sensitively.  When Err is set every call fails with it.
type UserStore struct {
	mu     sync.Mutex
	users  map[uint64]model.User
	nextID uint64
	Err    error
}

// NewUserStore returns an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uint64]model.User)}
}

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// TaskStore is a thread-safe in-memory task store.  When Err is set every
// call fails with it.
type TaskStore struct {
	mu     sync.Mutex
	tasks  map[uint64]model.Task
	nextID uint64
	Err    error
}

// NewTaskStore returns an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uint64]model.Task)}
}

func (s *TaskStore) ListByOwner(_ context.Context, ownerID uint64) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *TaskStore) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	t.ID = s.nextID
	s.tasks[t.ID] = *t
	return nil
}

func (s *TaskStore) FindOwned(_ context.Context, id, ownerID uint64) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.Task{}, false, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return model.Task{}, false, nil
	}
	return t, true, nil
}

func (s *TaskStore) UpdateOwned(_ context.Context, id, ownerID uint64, patch model.TaskPatch, now time.Time) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.Task{}, false, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return model.Task{}, false, nil
	}
	patch.Apply(&t, now)
	s.tasks[id] = t
	return t, true, nil
}

func (s *TaskStore) DeleteOwned(_ context.Context, id, ownerID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// Get returns task id regardless of owner, for assertions.
func (s *TaskStore) Get(id uint64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// RecordingPublisher keeps every event it is given.  When Err is set the
// event is still recorded and Err is returned.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []queue.TaskEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, ev queue.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.Err
}

// Events returns a copy of the recorded events in publish order.
func (p *RecordingPublisher) Events() []queue.TaskEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.TaskEvent(nil), p.events...)
}

// Types returns the recorded event types in publish order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
