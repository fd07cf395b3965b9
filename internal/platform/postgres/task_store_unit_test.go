package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func catPtr(c domain.Category) *domain.Category { return &c }

func TestBuildTaskFilter(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("owner scoping only", func(t *testing.T) {
		where, args := buildTaskFilter(ownerID, store.TaskFilter{})
		assert.Equal(t, "owner_id = $1", where)
		assert.Equal(t, []any{ownerID}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		due := time.Date(2026, 4, 1, 15, 30, 0, 0, time.UTC)
		filter := store.TaskFilter{
			Completed: boolPtr(true),
			Category:  catPtr(domain.CategoryWork),
			Priority:  intPtr(2),
			DueDate:   &due,
		}

		where, args := buildTaskFilter(ownerID, filter)

		assert.Equal(t,
			"owner_id = $1 AND completed = $2 AND category = $3 AND priority = $4"+
				" AND due_date >= $5 AND due_date < $6",
			where)
		require.Len(t, args, 6)
		assert.Equal(t, ownerID, args[0])
		assert.Equal(t, true, args[1])
		assert.Equal(t, domain.CategoryWork, args[2])
		assert.Equal(t, 2, args[3])

		// Due-date filter matches the whole calendar day.
		dayStart := args[4].(time.Time)
		dayEnd := args[5].(time.Time)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), dayStart)
		assert.Equal(t, 24*time.Hour, dayEnd.Sub(dayStart))
	})
}

func TestNormalizeListOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       store.ListOptions
		wantPage int
		wantSize int
	}{
		{name: "zero values", in: store.ListOptions{}, wantPage: 1, wantSize: 10},
		{name: "negative page", in: store.ListOptions{Page: -3, PageSize: 5}, wantPage: 1, wantSize: 5},
		{name: "zero size", in: store.ListOptions{Page: 2}, wantPage: 2, wantSize: 10},
		{name: "size above cap", in: store.ListOptions{Page: 1, PageSize: 500}, wantPage: 1, wantSize: 100},
		{name: "valid passthrough", in: store.ListOptions{Page: 3, PageSize: 25}, wantPage: 3, wantSize: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeListOptions(tt.in)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.PageSize)
		})
	}
}

func TestOrderClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts store.ListOptions
		want string
	}{
		{
			name: "default newest first",
			opts: store.ListOptions{},
			want: "created_at DESC, id ASC",
		},
		{
			name: "unknown field falls back",
			opts: store.ListOptions{SortBy: "owner_id; DROP TABLE tasks"},
			want: "created_at DESC, id ASC",
		},
		{
			name: "due date ascending",
			opts: store.ListOptions{SortBy: "dueDate", SortOrder: store.SortAscending},
			want: "due_date ASC, id ASC",
		},
		{
			name: "priority descending",
			opts: store.ListOptions{SortBy: "priority", SortOrder: store.SortDescending},
			want: "priority DESC, id ASC",
		},
		{
			name: "title without explicit order is ascending",
			opts: store.ListOptions{SortBy: "title"},
			want: "title ASC, id ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.opts))
		})
	}
}

func TestApplyTaskUpdate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		task := domain.NewTask(uuid.New())
		task.Title = "Original"
		task.Description = "Keep me"
		task.Priority = 2

		applyTaskUpdate(task, store.TaskUpdate{Title: strPtr("Changed")}, now)

		assert.Equal(t, "Changed", task.Title)
		assert.Equal(t, "Keep me", task.Description)
		assert.Equal(t, 2, task.Priority)
		assert.Equal(t, now, task.UpdatedAt)
	})

	t.Run("completion transition sets and clears completed_at", func(t *testing.T) {
		task := domain.NewTask(uuid.New())
		task.Title = "Toggle"

		applyTaskUpdate(task, store.TaskUpdate{Completed: boolPtr(true)}, now)
		assert.True(t, task.Completed)
		require.NotNil(t, task.CompletedAt)

		later := now.Add(time.Hour)
		applyTaskUpdate(task, store.TaskUpdate{Completed: boolPtr(false)}, later)
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("clear due date", func(t *testing.T) {
		task := domain.NewTask(uuid.New())
		task.Title = "Dated"
		due := now.AddDate(0, 0, 2)
		task.DueDate = &due

		applyTaskUpdate(task, store.TaskUpdate{ClearDueDate: true}, now)
		assert.Nil(t, task.DueDate)
	})

	t.Run("tags replaced wholesale", func(t *testing.T) {
		task := domain.NewTask(uuid.New())
		task.Title = "Tagged"
		task.Tags = []string{"old"}

		applyTaskUpdate(task, store.TaskUpdate{Tags: []string{"new", "tags"}}, now)
		assert.Equal(t, []string{"new", "tags"}, task.Tags)
	})
}
