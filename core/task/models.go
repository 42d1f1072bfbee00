package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ikedalab/classinfo/core"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
	StatusCancelled  Status = "cancelled"
)

// SettableStatuses are the statuses a user may set by hand; overdue is
// derived from the due date, never assigned directly.
var SettableStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

type Type string

const (
	TypeAssignment   Type = "assignment"
	TypeProject      Type = "project"
	TypeExam         Type = "exam"
	TypeQuiz         Type = "quiz"
	TypePresentation Type = "presentation"
	TypeHomework     Type = "homework"
	TypeLab          Type = "lab"
	TypeReading      Type = "reading"
	TypeOther        Type = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Task struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Type        Type      `json:"type" db:"type"`
	Class       string    `json:"class" db:"class"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	Status      Status    `json:"status" db:"status"`
	Priority    Priority  `json:"priority" db:"priority"`
	CompletedAt time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// EffectiveStatus is the read-time view of the task's status. Completed
// and cancelled are sticky; anything else past due reads as overdue.
// Pure derivation, never written back by readers.
func (t Task) EffectiveStatus(now time.Time) Status {
	switch t.Status {
	case StatusCompleted, StatusCancelled:
		return t.Status
	}
	if t.DueDate.Before(now) {
		return StatusOverdue
	}
	if t.Status == StatusOverdue {
		// stored overdue with a future due date: the due date was pushed out
		return StatusPending
	}
	return t.Status
}

// Reconcile settles derived state before a write: a past-due non-terminal
// task is stored as overdue, and completedAt tracks the completed status.
func (t *Task) Reconcile(now time.Time) {
	if t.Status == StatusCompleted {
		if t.CompletedAt.IsZero() {
			t.CompletedAt = now.UTC()
		}
	} else {
		t.CompletedAt = time.Time{}
	}
	t.Status = t.EffectiveStatus(now)
}

// Rendered is a Task together with its derived effective status.
type Rendered struct {
	Task
	EffectiveStatus Status `json:"effective_status"`
}

func Render(t Task, now time.Time) Rendered {
	return Rendered{Task: t, EffectiveStatus: t.EffectiveStatus(now)}
}

func RenderAll(tasks []Task, now time.Time) []Rendered {
	rendered := make([]Rendered, len(tasks))
	for i, t := range tasks {
		rendered[i] = Render(t, now)
	}
	return rendered
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=1000"`
	Type        Type      `json:"type" validate:"required,oneof=assignment project exam quiz presentation homework lab reading other"`
	Class       string    `json:"class" validate:"required,max=100"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Status      Status    `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    Priority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CreatedBy   string    `json:"created_by" validate:"omitempty,max=100"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Class = core.CleanString(nt.Class)
	nt.CreatedBy = core.CleanString(nt.CreatedBy)
	if nt.Status == "" {
		nt.Status = StatusPending
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	if nt.CreatedBy == "" {
		nt.CreatedBy = "system"
	}
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing
// Task. Zero fields keep their stored values.
type UpdateTask struct {
	Title       string    `json:"title" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Type        Type      `json:"type" validate:"omitempty,oneof=assignment project exam quiz presentation homework lab reading other"`
	Class       string    `json:"class" validate:"omitempty,max=100"`
	DueDate     time.Time `json:"due_date"`
	Status      Status    `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    Priority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Class = core.CleanString(ut.Class)
	if ut.Description != nil {
		desc := core.CleanString(*ut.Description)
		ut.Description = &desc
	}
	return validate.Struct(ut)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Search    string    `query:"search"` // case-insensitive match on title, description or class
	Status    Status    `query:"status"` // stored-status match
	Type      Type      `query:"type"`
	Class     string    `query:"class"`
	Priority  Priority  `query:"priority"`
	DueBefore time.Time `query:"due_before"` // strictly before, matching the overdue cutoff
	DueAfter  time.Time `query:"due_after"`  // inclusive

	// ExcludeTerminal drops completed and cancelled tasks; combined with
	// DueBefore=now it selects the overdue set.
	ExcludeTerminal bool `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Type == "" && qf.Class == "" &&
		qf.Priority == "" && qf.DueBefore.IsZero() && qf.DueAfter.IsZero() && !qf.ExcludeTerminal
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
}

// Stats is the per-status breakdown for the overview endpoint.
type Stats struct {
	StatusBreakdown map[Status]int `json:"statusBreakdown"`
	Overdue         int            `json:"overdue"`
	Upcoming        int            `json:"upcoming"`
	Total           int            `json:"total"`
}
