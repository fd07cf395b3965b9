package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a task.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryShopping Category = "shopping"
	CategoryOther    Category = "other"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryStudy, CategoryPersonal,
		CategoryHealth, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// Field length limits for tasks.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxTagLength         = 20

	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5
)

// Task represents a single to-do item owned by a user.
// Every access path filters by OwnerID; that scoping is what isolates
// one user's tasks from another's.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a Task owned by the given user with all defaults applied:
// personal category, priority 3, not completed, empty tag list.
// Callers set the remaining fields and then run Normalize and Validate
// before persisting.
func NewTask(ownerID uuid.UUID) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Category:  CategoryPersonal,
		Priority:  DefaultPriority,
		Completed: false,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize trims title, description and tags in place.
// Empty tags are dropped; tag order is preserved.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)

	if t.Tags == nil {
		t.Tags = []string{}
		return
	}
	tags := t.Tags[:0]
	for _, tag := range t.Tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	t.Tags = tags
}

// Validate checks all task fields, including the due date against now, and
// reports every problem at once, flattened into a single comma-joined
// message wrapped in ErrValidation. The due date is checked at write time
// only; it is not re-checked after the task is stored, so updates that do
// not touch the due date should use ValidateFields instead.
func (t *Task) Validate(now time.Time) error {
	problems := t.fieldProblems()

	if t.DueDate != nil {
		today := now.UTC().Truncate(24 * time.Hour)
		if t.DueDate.UTC().Truncate(24 * time.Hour).Before(today) {
			problems = append(problems, "due date cannot be in the past")
		}
	}

	return joinProblems(problems)
}

// ValidateFields checks every task field except the due date.
func (t *Task) ValidateFields() error {
	return joinProblems(t.fieldProblems())
}

func joinProblems(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}

func (t *Task) fieldProblems() []string {
	var problems []string

	if t.ID == uuid.Nil {
		problems = append(problems, "id is required")
	}
	if t.OwnerID == uuid.Nil {
		problems = append(problems, "owner is required")
	}

	if t.Title == "" {
		problems = append(problems, "title is required")
	} else if len(t.Title) > MaxTitleLength {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}

	if len(t.Description) > MaxDescriptionLength {
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}

	if !t.Category.Valid() {
		problems = append(problems, "category must be one of work, study, personal, health, shopping, other")
	}

	if t.Priority < MinPriority || t.Priority > MaxPriority {
		problems = append(problems, fmt.Sprintf("priority must be between %d and %d", MinPriority, MaxPriority))
	}

	for _, tag := range t.Tags {
		if len(tag) > MaxTagLength {
			problems = append(problems, fmt.Sprintf("tag %q must be at most %d characters", tag, MaxTagLength))
			break
		}
	}

	return problems
}

// SetCompleted records a completion state change, keeping CompletedAt
// consistent: set on the false-to-true transition, cleared on true-to-false.
// The pair is written to the store in a single statement, so the invariant
// completed == (CompletedAt != nil) always holds for persisted tasks.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed && !t.Completed {
		ts := now.UTC()
		t.CompletedAt = &ts
	} else if !completed {
		t.CompletedAt = nil
	}
	t.Completed = completed
}
