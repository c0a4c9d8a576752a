package task

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-client/core"
)

// Statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	TaskType    string      `json:"task_type"`
	IsUrgent    bool        `json:"is_urgent"`
	DueDate     null.Time   `json:"due_date"`
	CompletedAt null.Time   `json:"completed_at"`
	CreatedBy   null.String `json:"created_by_name"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// IsOverdue reports whether the task is still open past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Valid && !t.IsCompleted() && t.Status != StatusCancelled && t.DueDate.Time.Before(now)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	TaskType    string     `json:"task_type,omitempty"`
	IsUrgent    bool       `json:"is_urgent"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return core.ValidateStruct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	IsUrgent    *bool      `json:"is_urgent,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (ut *UpdateTask) Validate() error {
	if ut.Title != nil {
		title := core.CleanString(*ut.Title)
		ut.Title = &title
	}
	return core.ValidateStruct(ut)
}

type QueryFilter struct {
	Status    string `validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority  string `validate:"omitempty,oneof=low medium high"`
	TaskType  string
	IsUrgent  *bool
	DueBefore time.Time
	Page      int `validate:"gte=0"`
}

func (qf QueryFilter) Values() url.Values {
	v := make(url.Values)
	if qf.Status != "" {
		v.Set("status", qf.Status)
	}
	if qf.Priority != "" {
		v.Set("priority", qf.Priority)
	}
	if qf.TaskType != "" {
		v.Set("task_type", qf.TaskType)
	}
	if qf.IsUrgent != nil {
		v.Set("is_urgent", strconv.FormatBool(*qf.IsUrgent))
	}
	if !qf.DueBefore.IsZero() {
		v.Set("due_date__lte", qf.DueBefore.UTC().Format(time.RFC3339))
	}
	if qf.Page > 0 {
		v.Set("page", strconv.Itoa(qf.Page))
	}
	return v
}
