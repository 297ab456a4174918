package domain

import (
	"context"
	"strings"
	"time"
)

// Priority ranks a task. Unrecognized values normalize to medium.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a raw priority value, defaulting to medium.
func ParsePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Task is one concrete to-do row on a transaction. Due dates are calendar
// dates at UTC midnight, or nil for open-ended tasks.
type Task struct {
	ID            string
	TransactionID string
	Title         string
	Description   string
	Priority      Priority
	DueDate       *time.Time
	Completed     bool
	AgentVisible  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskPayload is one task creation request produced by the materializer.
type TaskPayload struct {
	TransactionID string
	Title         string
	Description   string
	Priority      Priority
	DueDate       *time.Time
	Completed     bool
	AgentVisible  bool
}

// TaskQuery narrows task listings. Filter is an AIP-160 expression over
// task fields, translated to SQL by the store.
type TaskQuery struct {
	TransactionID string
	Filter        string
}

// TaskStore is the persistence boundary for task rows.
type TaskStore interface {
	InsertTasks(ctx context.Context, tasks []Task) error
	ListTasks(ctx context.Context, query TaskQuery) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	SetTaskCompletion(ctx context.Context, id string, completed bool, updatedAt time.Time) (Task, error)
}

// Tasks provides task read and completion use-cases. Task creation happens
// through the template engine or direct inserts by the CRUD surface.
type Tasks struct {
	store TaskStore
	clock func() time.Time
}

// NewTasks constructs the task service.
func NewTasks(store TaskStore, clock func() time.Time) *Tasks {
	if clock == nil {
		clock = time.Now
	}
	return &Tasks{store: store, clock: clock}
}

// List returns tasks for a transaction, optionally narrowed by filter.
func (s *Tasks) List(ctx context.Context, query TaskQuery) ([]Task, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	query.TransactionID = strings.TrimSpace(query.TransactionID)
	if query.TransactionID == "" {
		return nil, ErrTransactionIDRequired
	}
	return s.store.ListTasks(ctx, query)
}

// Get returns one task by id.
func (s *Tasks) Get(ctx context.Context, id string) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, ErrTaskIDRequired
	}
	return s.store.GetTask(ctx, id)
}

// SetCompletion toggles one task's completed flag.
func (s *Tasks) SetCompletion(ctx context.Context, id string, completed bool) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, ErrTaskIDRequired
	}
	return s.store.SetTaskCompletion(ctx, id, completed, s.clock().UTC())
}
