package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/platform/logger"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend. Every query filters by owner_id, so a
// task belonging to another user is indistinguishable from a missing one.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface.
func NewTaskStore(db *sql.DB, log *slog.Logger) *TaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = `id, owner_id, title, description, category, priority, due_date,
	completed, completed_at, tags, created_at, updated_at`

// sortColumns whitelists the JSON field names callers may sort by and maps
// them to their column names. Anything else falls back to the default sort.
var sortColumns = map[string]string{
	"title":       "title",
	"category":    "category",
	"priority":    "priority",
	"dueDate":     "due_date",
	"completed":   "completed",
	"completedAt": "completed_at",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// Create implements store.TaskStore.Create.
// The task is normalized and fully validated, including the due date
// against the current day, before it is written.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task.Normalize()
	if err := task.Validate(time.Now()); err != nil {
		log.Debug("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("owner_id", task.OwnerID.String()))
		return err
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO tasks (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, taskColumns)

	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Category,
		task.Priority,
		nullableTime(task.DueDate),
		task.Completed,
		nullableTime(task.CompletedAt),
		tags,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	opts store.ListOptions,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts = normalizeListOptions(opts)
	where, args := buildTaskFilter(ownerID, filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	orderBy := orderClause(opts)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, orderBy, len(args)+1, len(args)+2,
	)
	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + opts.PageSize - 1) / opts.PageSize
	}

	return &store.TaskPage{
		Tasks:      tasks,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	return getTask(ctx, s.db, ownerID, id)
}

// Update implements store.TaskStore.Update.
// The read and write run in one transaction; the completed/completed_at
// pair is written by a single UPDATE statement.
func (s *TaskStore) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := getTask(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		applyTaskUpdate(task, update, now)
		task.Normalize()

		// The due date is re-checked only when this update sets it.
		if update.DueDate != nil {
			err = task.Validate(now)
		} else {
			err = task.ValidateFields()
		}
		if err != nil {
			log.Debug("task validation failed during update",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
			return err
		}

		tags, err := json.Marshal(task.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}

		query := `
			UPDATE tasks
			SET title = $1, description = $2, category = $3, priority = $4,
				due_date = $5, completed = $6, completed_at = $7, tags = $8,
				updated_at = $9
			WHERE id = $10 AND owner_id = $11
		`
		result, err := tx.ExecContext(
			ctx,
			query,
			task.Title,
			task.Description,
			task.Category,
			task.Priority,
			nullableTime(task.DueDate),
			task.Completed,
			nullableTime(task.CompletedAt),
			tags,
			task.UpdatedAt,
			task.ID,
			ownerID,
		)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, "task"); err != nil {
			return store.ErrTaskNotFound
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return updated, nil
}

// Delete implements store.TaskStore.Delete.
// The deleted record is returned to the caller.
func (s *TaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING %s`,
		taskColumns,
	)
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// DeleteCompleted implements store.TaskStore.DeleteCompleted.
func (s *TaskStore) DeleteCompleted(ctx context.Context, ownerID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE owner_id = $1 AND completed = TRUE`,
		ownerID,
	)
	if err != nil {
		log.Error("failed to delete completed tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("completed tasks deleted",
		slog.Int64("count", deleted),
		slog.String("owner_id", ownerID.String()))
	return int(deleted), nil
}

// Stats implements store.TaskStore.Stats.
func (s *TaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var stats store.TaskStats
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE owner_id = $1`,
		ownerID,
	).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		log.Error("failed to compute task stats",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}

	return &stats, nil
}

// Upcoming implements store.TaskStore.Upcoming.
func (s *TaskStore) Upcoming(
	ctx context.Context,
	ownerID uuid.UUID,
	days int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	until := now.AddDate(0, 0, days)

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE owner_id = $1 AND completed = FALSE
			AND due_date IS NOT NULL AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date ASC
	`, taskColumns)

	rows, err := s.db.QueryContext(ctx, query, ownerID, now, until)
	if err != nil {
		log.Error("failed to query upcoming tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// getTask loads a single task scoped to its owner, against either the pool
// or an open transaction.
func getTask(ctx context.Context, q store.DBTX, ownerID, id uuid.UUID) (*domain.Task, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE id = $1 AND owner_id = $2`,
		taskColumns,
	)
	task, err := scanTask(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// applyTaskUpdate copies the supplied fields onto the task and refreshes
// updated_at. Completion changes go through SetCompleted so the
// completed_at bookkeeping stays consistent.
func applyTaskUpdate(task *domain.Task, update store.TaskUpdate, now time.Time) {
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
	if update.DueDate != nil {
		due := update.DueDate.UTC()
		task.DueDate = &due
	} else if update.ClearDueDate {
		task.DueDate = nil
	}
	if update.Tags != nil {
		task.Tags = update.Tags
	}
	if update.Completed != nil {
		task.SetCompleted(*update.Completed, now)
	}
	task.UpdatedAt = now
}

// buildTaskFilter translates a TaskFilter into a WHERE clause and its
// arguments. The owner condition always comes first.
func buildTaskFilter(ownerID uuid.UUID, filter store.TaskFilter) (string, []any) {
	conditions := []string{"owner_id = $1"}
	args := []any{ownerID}

	next := func() int { return len(args) + 1 }

	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("completed = $%d", next()))
		args = append(args, *filter.Completed)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", next()))
		args = append(args, *filter.Category)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", next()))
		args = append(args, *filter.Priority)
	}
	if filter.DueDate != nil {
		dayStart := filter.DueDate.UTC().Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)
		conditions = append(conditions,
			fmt.Sprintf("due_date >= $%d", next()))
		args = append(args, dayStart)
		conditions = append(conditions,
			fmt.Sprintf("due_date < $%d", next()))
		args = append(args, dayEnd)
	}

	return strings.Join(conditions, " AND "), args
}

// normalizeListOptions clamps pagination inputs to their defaults and
// bounds. Malformed values become page 1 and size 10; size is capped.
func normalizeListOptions(opts store.ListOptions) store.ListOptions {
	if opts.Page < 1 {
		opts.Page = store.DefaultPage
	}
	if opts.PageSize < 1 {
		opts.PageSize = store.DefaultPageSize
	}
	if opts.PageSize > store.MaxPageSize {
		opts.PageSize = store.MaxPageSize
	}
	return opts
}

// orderClause produces the ORDER BY expression for a listing. Unknown sort
// fields fall back to newest-created-first. The task id breaks ties so
// pagination is deterministic.
func orderClause(opts store.ListOptions) string {
	column, ok := sortColumns[opts.SortBy]
	if !ok {
		return "created_at DESC, id ASC"
	}

	direction := "ASC"
	if opts.SortOrder == store.SortDescending {
		direction = "DESC"
	}
	return column + " " + direction + ", id ASC"
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		dueDate     sql.NullTime
		completedAt sql.NullTime
		tags        []byte
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Priority,
		&dueDate,
		&task.Completed,
		&completedAt,
		&tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}

	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if err := json.Unmarshal(tags, &task.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	return &task, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
