package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskfolio/taskfolio-api/internal/domain"
)

// Pagination bounds for task listings.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskFilter narrows a task listing. Nil fields are ignored.
// DueDate matches the whole calendar day the timestamp falls on.
type TaskFilter struct {
	Completed *bool
	Category  *domain.Category
	Priority  *int
	DueDate   *time.Time
}

// SortOrder is the direction of a task listing sort.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ListOptions controls pagination and ordering of a task listing.
// Zero or out-of-range values fall back to defaults: page 1, size 10,
// newest-created-first.
type ListOptions struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder SortOrder
}

// TaskPage is one page of a task listing plus pagination bookkeeping.
type TaskPage struct {
	Tasks      []*domain.Task
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
// Tags replaces the whole tag list when non-nil. ClearDueDate removes a
// previously set due date (a nil DueDate alone means "no change").
type TaskUpdate struct {
	Title        *string
	Description  *string
	Category     *domain.Category
	Priority     *int
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	Tags         []string
}

// TaskStats summarizes a single owner's tasks.
// CompletionRate is a whole-number percentage, 0 when there are no tasks.
type TaskStats struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate int
}

// TaskStore owns task persistence. Every operation is scoped to the given
// owner: a task belonging to someone else behaves exactly like a missing
// task and surfaces as ErrTaskNotFound.
type TaskStore interface {
	// Create validates, normalizes and persists a new task.
	// Returns a validation error wrapped in domain.ErrValidation if the
	// task fields are invalid.
	Create(ctx context.Context, task *domain.Task) error

	// List returns one page of the owner's tasks matching the filter.
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter, opts ListOptions) (*TaskPage, error)

	// GetByID retrieves a single task owned by ownerID.
	// Returns ErrTaskNotFound if absent or owned by another user.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// Update applies a partial update to a task owned by ownerID, keeping
	// the completed/completed_at pair consistent, and returns the updated
	// task. Returns ErrTaskNotFound if absent or owned by another user.
	Update(ctx context.Context, ownerID, id uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes a task owned by ownerID and returns the deleted record.
	// Returns ErrTaskNotFound if absent or owned by another user.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// DeleteCompleted removes all of the owner's completed tasks and returns
	// the number deleted. Zero is a valid outcome, not an error.
	DeleteCompleted(ctx context.Context, ownerID uuid.UUID) (int, error)

	// Stats computes aggregate counts over all of the owner's tasks.
	Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)

	// Upcoming returns the owner's incomplete tasks due within [now,
	// now+days], sorted by due date ascending. Display truncation is the
	// caller's concern; the window is the only limit applied here.
	Upcoming(ctx context.Context, ownerID uuid.UUID, days int) ([]*domain.Task, error)
}
