package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
// Email format is enforced by the domain layer on top of these tags.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the outward shape of a user. It never carries password
// material.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Subscription string    `json:"subscription"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthData is the payload for successful register and login responses.
type AuthData struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// CreateTaskRequest defines the payload for task creation.
// Omitted fields take their defaults: personal category, priority 3.
type CreateTaskRequest struct {
	Title       string   `json:"title"       validate:"required"`
	Description string   `json:"description" validate:"omitempty"`
	Category    string   `json:"category"    validate:"omitempty,oneof=work study personal health shopping other"`
	Priority    *int     `json:"priority"    validate:"omitempty,min=1,max=5"`
	DueDate     string   `json:"dueDate"     validate:"omitempty"`
	Tags        []string `json:"tags"        validate:"omitempty,dive,max=20"`
}

// UpdateTaskRequest defines the payload for partial task updates.
// Nil fields are left unchanged; an explicit empty dueDate clears it.
type UpdateTaskRequest struct {
	Title       *string  `json:"title"       validate:"omitempty"`
	Description *string  `json:"description" validate:"omitempty"`
	Category    *string  `json:"category"    validate:"omitempty,oneof=work study personal health shopping other"`
	Priority    *int     `json:"priority"    validate:"omitempty,min=1,max=5"`
	DueDate     *string  `json:"dueDate"     validate:"omitempty"`
	Completed   *bool    `json:"completed"   validate:"omitempty"`
	Tags        []string `json:"tags"        validate:"omitempty,dive,max=20"`
}

// TaskResponse is the outward shape of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PaginationResponse reports the position of a listing page.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TaskListData is the payload for the task listing endpoint.
type TaskListData struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

// StatsBody is the aggregate counters section of the stats payload.
type StatsBody struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

// StatsData is the payload for the stats endpoint. UpcomingTasks holds at
// most five tasks due within the next three days.
type StatsData struct {
	Stats         StatsBody      `json:"stats"`
	UpcomingTasks []TaskResponse `json:"upcomingTasks"`
}

// DeleteCompletedData is the payload for the bulk delete endpoint.
type DeleteCompletedData struct {
	DeletedCount int `json:"deletedCount"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Subscription: string(user.Subscription),
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    string(task.Category),
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		Tags:        task.Tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func tasksToResponses(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	return responses
}

func pageToPagination(page *store.TaskPage) PaginationResponse {
	return PaginationResponse{
		Page:       page.Page,
		Limit:      page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}
