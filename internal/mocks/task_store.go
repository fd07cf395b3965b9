package mocks

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation keeps tasks in a map and honors owner scoping, filters
// and pagination; ordering is newest-created-first regardless of options.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, task *domain.Task) error
	ListFn            func(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter, opts store.ListOptions) (*store.TaskPage, error)
	GetByIDFn         func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	UpdateFn          func(ctx context.Context, ownerID, id uuid.UUID, update store.TaskUpdate) (*domain.Task, error)
	DeleteFn          func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	DeleteCompletedFn func(ctx context.Context, ownerID uuid.UUID) (int, error)
	StatsFn           func(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error)
	UpcomingFn        func(ctx context.Context, ownerID uuid.UUID, days int) ([]*domain.Task, error)

	// Data for the default implementation
	Tasks map[uuid.UUID]*domain.Task

	// Default error returned when no Fn is set
	Err error
}

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.Err != nil {
		return m.Err
	}

	task.Normalize()
	if err := task.Validate(time.Now()); err != nil {
		return err
	}

	m.Tasks[task.ID] = task
	return nil
}

// List implements the TaskStore interface.
func (m *MockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	opts store.ListOptions,
) (*store.TaskPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, filter, opts)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	matched := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		if task.OwnerID == ownerID && matchesFilter(task, filter) {
			matched = append(matched, task)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := opts.Page
	if page < 1 {
		page = store.DefaultPage
	}
	size := opts.PageSize
	if size < 1 {
		size = store.DefaultPageSize
	}
	if size > store.MaxPageSize {
		size = store.MaxPageSize
	}

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &store.TaskPage{
		Tasks:      matched[start:end],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, ownerID, id)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	task, exists := m.Tasks[id]
	if !exists || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, id, update)
	}

	task, err := m.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Category != nil {
		task.Category = *update.Category
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.ClearDueDate {
		task.DueDate = nil
	} else if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.Completed != nil {
		task.SetCompleted(*update.Completed, now)
	}
	if update.Tags != nil {
		task.Tags = update.Tags
	}
	task.Normalize()

	if update.DueDate != nil {
		err = task.Validate(now)
	} else {
		err = task.ValidateFields()
	}
	if err != nil {
		return nil, err
	}

	task.UpdatedAt = now.UTC()
	return task, nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, id)
	}

	task, err := m.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	delete(m.Tasks, id)
	return task, nil
}

// DeleteCompleted implements the TaskStore interface.
func (m *MockTaskStore) DeleteCompleted(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if m.DeleteCompletedFn != nil {
		return m.DeleteCompletedFn(ctx, ownerID)
	}

	if m.Err != nil {
		return 0, m.Err
	}

	count := 0
	for id, task := range m.Tasks {
		if task.OwnerID == ownerID && task.Completed {
			delete(m.Tasks, id)
			count++
		}
	}

	return count, nil
}

// Stats implements the TaskStore interface.
func (m *MockTaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, ownerID)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	stats := &store.TaskStats{}
	for _, task := range m.Tasks {
		if task.OwnerID != ownerID {
			continue
		}
		stats.Total++
		if task.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}

	return stats, nil
}

// Upcoming implements the TaskStore interface.
func (m *MockTaskStore) Upcoming(ctx context.Context, ownerID uuid.UUID, days int) ([]*domain.Task, error) {
	if m.UpcomingFn != nil {
		return m.UpcomingFn(ctx, ownerID, days)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, days)
	upcoming := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		if task.OwnerID != ownerID || task.Completed || task.DueDate == nil {
			continue
		}
		if task.DueDate.Before(now) || task.DueDate.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, task)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(*upcoming[j].DueDate)
	})

	return upcoming, nil
}

func matchesFilter(task *domain.Task, filter store.TaskFilter) bool {
	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	if filter.Category != nil && task.Category != *filter.Category {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.DueDate != nil {
		if task.DueDate == nil {
			return false
		}
		want := filter.DueDate.UTC().Truncate(24 * time.Hour)
		got := task.DueDate.UTC().Truncate(24 * time.Hour)
		if !got.Equal(want) {
			return false
		}
	}
	return true
}
