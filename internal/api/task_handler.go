package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// upcomingWindowDays is the look-ahead window for the stats endpoint.
// upcomingDisplayLimit truncates the returned list; the window and the
// display limit are independent knobs.
const (
	upcomingWindowDays   = 3
	upcomingDisplayLimit = 5
)

// TaskHandler handles task CRUD, listing and statistics requests.
// Every operation is scoped to the authenticated caller.
type TaskHandler struct {
	taskStore store.TaskStore
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{taskStore: taskStore}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task := domain.NewTask(identity.UserID)
	task.Title = req.Title
	task.Description = req.Description
	if req.Category != "" {
		task.Category = domain.Category(req.Category)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		task.DueDate = &due
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, "task created", taskToResponse(task))
}

// List handles GET /api/tasks. Malformed pagination inputs fall back to
// defaults rather than failing the request; unrecognized filter values are
// ignored.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return
	}

	filter := parseTaskFilter(r)
	opts := parseListOptions(r)

	page, err := h.taskStore.List(r.Context(), identity.UserID, filter, opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "tasks retrieved", TaskListData{
		Tasks:      tasksToResponses(page.Tasks),
		Pagination: pageToPagination(page),
	})
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := handleIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), identity.UserID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "task retrieved", taskToResponse(task))
}

// Update handles PUT /api/tasks/{id}. Only supplied fields change; sending
// an empty dueDate clears a previously set one.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := handleIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
		Tags:        req.Tags,
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		update.Category = &category
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				HandleAPIError(w, r, err, "")
				return
			}
			update.DueDate = &due
		}
	}

	task, err := h.taskStore.Update(r.Context(), identity.UserID, taskID, update)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "task updated", taskToResponse(task))
}

// Delete handles DELETE /api/tasks/{id} and echoes the deleted task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := handleIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskStore.Delete(r.Context(), identity.UserID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "task deleted", taskToResponse(task))
}

// DeleteCompleted handles DELETE /api/tasks/completed. Deleting zero tasks
// is a success, not an error.
func (h *TaskHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return
	}

	count, err := h.taskStore.DeleteCompleted(r.Context(), identity.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "completed tasks deleted", DeleteCompletedData{
		DeletedCount: count,
	})
}

// Stats handles GET /api/tasks/stats. The upcoming list covers the next
// three days and is truncated to five tasks for display.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return
	}

	stats, err := h.taskStore.Stats(r.Context(), identity.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	upcoming, err := h.taskStore.Upcoming(r.Context(), identity.UserID, upcomingWindowDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if len(upcoming) > upcomingDisplayLimit {
		upcoming = upcoming[:upcomingDisplayLimit]
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "stats retrieved", StatsData{
		Stats: StatsBody{
			Total:          stats.Total,
			Completed:      stats.Completed,
			Pending:        stats.Pending,
			CompletionRate: stats.CompletionRate,
		},
		UpcomingTasks: tasksToResponses(upcoming),
	})
}

// parseTaskFilter builds the listing filter from query parameters.
func parseTaskFilter(r *http.Request) store.TaskFilter {
	var filter store.TaskFilter
	query := r.URL.Query()

	if raw := query.Get("completed"); raw != "" {
		if completed, err := strconv.ParseBool(raw); err == nil {
			filter.Completed = &completed
		}
	}
	if raw := query.Get("category"); raw != "" {
		category := domain.Category(strings.ToLower(raw))
		if category.Valid() {
			filter.Category = &category
		}
	}
	if raw := query.Get("priority"); raw != "" {
		if priority, err := strconv.Atoi(raw); err == nil &&
			priority >= domain.MinPriority && priority <= domain.MaxPriority {
			filter.Priority = &priority
		}
	}
	if raw := query.Get("dueDate"); raw != "" {
		if due, err := parseDueDate(raw); err == nil {
			filter.DueDate = &due
		}
	}

	return filter
}

// parseListOptions builds pagination and ordering from query parameters.
// Anything malformed falls back to the store defaults.
func parseListOptions(r *http.Request) store.ListOptions {
	query := r.URL.Query()
	opts := store.ListOptions{
		Page:     store.DefaultPage,
		PageSize: store.DefaultPageSize,
	}

	if raw := query.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			opts.Page = page
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.PageSize = limit
		}
	}
	opts.SortBy = query.Get("sortBy")
	if order := store.SortOrder(query.Get("sortOrder")); order == store.SortAscending || order == store.SortDescending {
		opts.SortOrder = order
	}

	return opts
}
