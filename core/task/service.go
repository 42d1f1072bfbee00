package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ikedalab/classinfo/core"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrStatusNotUser = errors.New("overdue is calculated automatically and cannot be set")
)

type (
	Sort struct {
		By   string // "due_date", "priority", "created_at", "title"
		Desc bool
	}

	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// FilterTasks returns the filtered page plus the unpaginated total.
		// Equal sort keys keep insertion order.
		FilterTasks(ctx context.Context, filter QueryFilter, sort Sort, page core.Pagination) ([]Task, int, error)
		// QueryAllTasks returns every task ordered by due date ascending.
		QueryAllTasks(ctx context.Context) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTask, now time.Time) (Task, error) {
	t := Task{
		ID:          uuid.NewString(),
		Title:       nt.Title,
		Description: nt.Description,
		Type:        nt.Type,
		Class:       nt.Class,
		DueDate:     nt.DueDate,
		Status:      nt.Status,
		Priority:    nt.Priority,
		CreatedBy:   nt.CreatedBy,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	t.Reconcile(now)
	return svc.repo.CreateTask(ctx, t)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, sort Sort, page core.Pagination) ([]Task, int, error) {
	filter.Clean()
	if sort.By == "" {
		sort.By = "due_date"
	}
	return svc.repo.FilterTasks(ctx, filter, sort, page)
}

// ByStatus selects tasks by their read-time status: overdue is the derived
// set (past due, non-terminal), any other status matches stored values.
func (svc *Service) ByStatus(ctx context.Context, status Status, now time.Time) ([]Task, error) {
	filter := QueryFilter{}
	if status == StatusOverdue {
		filter.DueBefore = now
		filter.ExcludeTerminal = true
	} else {
		filter.Status = status
	}
	items, _, err := svc.repo.FilterTasks(ctx, filter, Sort{By: "due_date"}, core.Pagination{Page: 1, Limit: core.MaxPageLimit})
	return items, err
}

// Overdue selects past-due tasks that are neither completed nor cancelled.
func (svc *Service) Overdue(ctx context.Context, now time.Time) ([]Task, error) {
	return svc.ByStatus(ctx, StatusOverdue, now)
}

// Upcoming selects non-terminal tasks due within the next `days` days.
func (svc *Service) Upcoming(ctx context.Context, now time.Time, days int) ([]Task, error) {
	if days <= 0 {
		days = 7
	}
	filter := QueryFilter{
		DueAfter:        now,
		DueBefore:       now.Add(time.Duration(days) * 24 * time.Hour),
		ExcludeTerminal: true,
	}
	items, _, err := svc.repo.FilterTasks(ctx, filter, Sort{By: "due_date"}, core.Pagination{Page: 1, Limit: core.MaxPageLimit})
	return items, err
}

func (svc *Service) ByClass(ctx context.Context, class string) ([]Task, error) {
	filter := QueryFilter{Class: core.CleanString(class)}
	items, _, err := svc.repo.FilterTasks(ctx, filter, Sort{By: "due_date"}, core.Pagination{Page: 1, Limit: core.MaxPageLimit})
	return items, err
}

// InRange selects a page of tasks whose due date falls on a calendar day
// within the inclusive bounds, evaluated in `loc`; the returned total
// counts the whole range.
func (svc *Service) InRange(ctx context.Context, start, end string, loc *time.Location, page core.Pagination) ([]Task, int, error) {
	r, err := core.NewDateRange(start, end)
	if err != nil {
		return nil, 0, err
	}
	// due_date-ordered full scan; exact calendar-day matching happens here
	candidates, err := svc.repo.QueryAllTasks(ctx)
	if err != nil {
		return nil, 0, err
	}
	tasks := make([]Task, 0, len(candidates))
	for _, t := range candidates {
		if r.ContainsInstant(t.DueDate, loc) {
			tasks = append(tasks, t)
		}
	}
	total := len(tasks)
	lo, hi := page.Slice(total)
	return tasks[lo:hi], total, nil
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTask, now time.Time) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.Type != "" {
		t.Type = ut.Type
	}
	if ut.Class != "" {
		t.Class = ut.Class
	}
	if !ut.DueDate.IsZero() {
		t.DueDate = ut.DueDate
	}
	if ut.Status != "" {
		t.Status = ut.Status
	}
	if ut.Priority != "" {
		t.Priority = ut.Priority
	}
	t.UpdatedAt = now.UTC()
	t.Reconcile(now)

	return svc.repo.UpdateTask(ctx, t)
}

// UpdateStatus transitions a task's persisted status. Overdue is derived
// and rejected here.
func (svc *Service) UpdateStatus(ctx context.Context, id string, status Status, now time.Time) (Task, error) {
	var settable bool
	for _, s := range SettableStatuses {
		if s == status {
			settable = true
			break
		}
	}
	if !settable {
		return Task{}, core.NewValidationError(ErrStatusNotUser, core.FieldError{Field: "status", Error: ErrStatusNotUser.Error()})
	}

	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	t.Reconcile(now)
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}

// Stats aggregates read-time statuses across all tasks.
func (svc *Service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	tasks, err := svc.repo.QueryAllTasks(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{StatusBreakdown: make(map[Status]int)}
	weekAhead := now.Add(7 * 24 * time.Hour)
	for _, t := range tasks {
		eff := t.EffectiveStatus(now)
		stats.StatusBreakdown[eff]++
		stats.Total++
		if eff == StatusOverdue {
			stats.Overdue++
		}
		if eff != StatusCompleted && eff != StatusCancelled &&
			!t.DueDate.Before(now) && !t.DueDate.After(weekAhead) {
			stats.Upcoming++
		}
	}
	return stats, nil
}
