package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/queue"
)

// TaskStore is the ownership-filtered task store.  Lookups report absence
// through found=false; a task owned by someone else is simply not found.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	FindOwned(ctx context.Context, id, ownerID uint64) (model.Task, bool, error)
	UpdateOwned(ctx context.Context, id, ownerID uint64, patch model.TaskPatch, now time.Time) (model.Task, bool, error)
	DeleteOwned(ctx context.Context, id, ownerID uint64) (bool, error)
}

// CreateTaskInput is the payload of a task creation.  Nil means omitted.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    *string
	DueDate     *string
}

// UpdateTaskInput is a partial update.  Nil fields are left untouched; an
// empty DueDate clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *string
}

// TaskService implements the task operations for an authenticated owner.
type TaskService struct {
	tasks  TaskStore
	events queue.Publisher
	log    *slog.Logger
	now    func() time.Time
}

// NewTaskService wires a TaskService.  A nil publisher disables events and a
// nil logger falls back to slog's default.
func NewTaskService(tasks TaskStore, events queue.Publisher, log *slog.Logger) *TaskService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{tasks: tasks, events: events, log: log.With("component", "tasks"), now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
// Timestamps are still truncated to microseconds.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TaskService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// List returns every task owned by ownerID.
func (s *TaskService) List(ctx context.Context, ownerID uint64) ([]model.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.ErrorContext(ctx, "list tasks failed", "user_id", ownerID, "err", err)
		return nil, internal("list tasks", err)
	}
	return tasks, nil
}

// Create validates in and stores a new pending task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID uint64, in CreateTaskInput) (model.Task, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return model.Task{}, err
	}
	priority := model.PriorityMedium
	if in.Priority != nil {
		if priority, err = validPriority(*in.Priority); err != nil {
			return model.Task{}, err
		}
	}
	var due *time.Time
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, ok := parseDueDate(*in.DueDate)
		if !ok {
			return model.Task{}, invalidDueDate()
		}
		due = &d
	}

	now := s.stamp()
	t := model.Task{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Status:      model.StatusPending,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, &t); err != nil {
		s.log.ErrorContext(ctx, "create task failed", "user_id", ownerID, "err", err)
		return model.Task{}, internal("create task", err)
	}
	s.log.InfoContext(ctx, "task created", "user_id", ownerID, "task_id", t.ID)
	s.publish(ctx, queue.TaskCreated, t)
	return t, nil
}

// Get returns task id if ownerID owns it.
func (s *TaskService) Get(ctx context.Context, ownerID, id uint64) (model.Task, error) {
	t, found, err := s.tasks.FindOwned(ctx, id, ownerID)
	if err != nil {
		s.log.ErrorContext(ctx, "get task failed", "user_id", ownerID, "task_id", id, "err", err)
		return model.Task{}, internal("get task", err)
	}
	if !found {
		return model.Task{}, taskNotFound()
	}
	return t, nil
}

// Update applies the supplied fields of in to task id.  Input is validated
// completely before the store is touched.
func (s *TaskService) Update(ctx context.Context, ownerID, id uint64, in UpdateTaskInput) (model.Task, error) {
	patch, err := buildPatch(in)
	if err != nil {
		return model.Task{}, err
	}
	t, err := s.apply(ctx, ownerID, id, patch, "update task")
	if err != nil {
		return model.Task{}, err
	}
	s.log.InfoContext(ctx, "task updated", "user_id", ownerID, "task_id", id)
	s.publish(ctx, queue.TaskUpdated, t)
	return t, nil
}

// Complete marks task id completed.  Completing a completed task succeeds
// and only refreshes updated_at.
func (s *TaskService) Complete(ctx context.Context, ownerID, id uint64) (model.Task, error) {
	completed := model.StatusCompleted
	t, err := s.apply(ctx, ownerID, id, model.TaskPatch{Status: &completed}, "complete task")
	if err != nil {
		return model.Task{}, err
	}
	s.log.InfoContext(ctx, "task completed", "user_id", ownerID, "task_id", id)
	s.publish(ctx, queue.TaskCompleted, t)
	return t, nil
}

// Delete removes task id permanently.
func (s *TaskService) Delete(ctx context.Context, ownerID, id uint64) error {
	found, err := s.tasks.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		s.log.ErrorContext(ctx, "delete task failed", "user_id", ownerID, "task_id", id, "err", err)
		return internal("delete task", err)
	}
	if !found {
		return taskNotFound()
	}
	s.log.InfoContext(ctx, "task deleted", "user_id", ownerID, "task_id", id)
	s.publish(ctx, queue.TaskDeleted, model.Task{ID: id, UserID: ownerID})
	return nil
}

func (s *TaskService) apply(ctx context.Context, ownerID, id uint64, patch model.TaskPatch, op string) (model.Task, error) {
	t, found, err := s.tasks.UpdateOwned(ctx, id, ownerID, patch, s.stamp())
	if err != nil {
		s.log.ErrorContext(ctx, op+" failed", "user_id", ownerID, "task_id", id, "err", err)
		return model.Task{}, internal(op, err)
	}
	if !found {
		return model.Task{}, taskNotFound()
	}
	return t, nil
}

// publish is best effort: the mutation has already committed.
func (s *TaskService) publish(ctx context.Context, typ string, t model.Task) {
	ev := queue.TaskEvent{
		Type:       typ,
		TaskID:     t.ID,
		UserID:     t.UserID,
		Status:     string(t.Status),
		OccurredAt: s.stamp(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "task event not published", "type", typ, "task_id", t.ID, "err", err)
	}
}

func buildPatch(in UpdateTaskInput) (model.TaskPatch, error) {
	var p model.TaskPatch
	if in.Title != nil {
		title, err := validTitle(*in.Title)
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	p.Description = in.Description
	if in.Priority != nil {
		pr, err := validPriority(*in.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if in.Status != nil {
		st := model.Status(*in.Status)
		if !st.Valid() {
			return p, invalidInput("Status must be 'pending' or 'completed'")
		}
		p.Status = &st
	}
	if in.DueDate != nil {
		if strings.TrimSpace(*in.DueDate) == "" {
			p.ClearDueDate = true
		} else {
			d, ok := parseDueDate(*in.DueDate)
			if !ok {
				return p, invalidDueDate()
			}
			p.DueDate = &d
		}
	}
	return p, nil
}

func validTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", invalidInput("Title is required")
	}
	if utf8.RuneCountInString(title) > model.TitleMaxLen {
		return "", invalidInput("Title must be at most %d characters", model.TitleMaxLen)
	}
	return title, nil
}

func validPriority(raw string) (model.Priority, error) {
	p := model.Priority(raw)
	if !p.Valid() {
		return "", invalidInput("Priority must be 'low', 'medium', or 'high'")
	}
	return p, nil
}

func invalidDueDate() error {
	return invalidInput("Invalid due_date format. Use ISO format.")
}

func taskNotFound() error { return notFound("Task not found") }
