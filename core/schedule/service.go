package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ikedalab/classinfo/core"
)

var ErrNotFound = errors.New("schedule not found")

type (
	Repository interface {
		CreateSchedule(ctx context.Context, sched Schedule) (Schedule, error)
		GetScheduleByID(ctx context.Context, id string) (Schedule, error)
		// FilterSchedules returns the filtered page ordered by date then
		// start time, plus the unpaginated total.
		FilterSchedules(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Schedule, int, error)
		// SchedulesInRange returns all schedules whose date falls on or
		// between the range's calendar days, ordered by date then start time.
		SchedulesInRange(ctx context.Context, r core.DateRange) ([]Schedule, error)
		UpdateSchedule(ctx context.Context, sched Schedule) (Schedule, error)
		DeleteSchedulesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSchedule) (Schedule, error) {
	date, err := core.ParseCalendarDate(ns.Date)
	if err != nil {
		return Schedule{}, err
	}
	start, err := core.ParseClockTime(ns.StartTime)
	if err != nil {
		return Schedule{}, err
	}
	end, err := core.ParseClockTime(ns.EndTime)
	if err != nil {
		return Schedule{}, err
	}

	now := time.Now().UTC()
	sched := Schedule{
		ID:          uuid.NewString(),
		Subject:     ns.Subject,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Room:        ns.Room,
		Description: ns.Description,
		Status:      ns.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSchedule(ctx, sched)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	return svc.repo.GetScheduleByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Schedule, int, error) {
	filter.Clean()
	return svc.repo.FilterSchedules(ctx, filter, page)
}

// InRange selects a page of schedules within inclusive calendar-day
// bounds; the returned total counts the whole range.
func (svc *Service) InRange(ctx context.Context, start, end string, page core.Pagination) ([]Schedule, int, error) {
	r, err := core.NewDateRange(start, end)
	if err != nil {
		return nil, 0, err
	}
	items, err := svc.repo.SchedulesInRange(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	total := len(items)
	lo, hi := page.Slice(total)
	return items[lo:hi], total, nil
}

// Today selects schedules on now's calendar day.
func (svc *Service) Today(ctx context.Context, now time.Time) ([]Schedule, error) {
	day := core.Today(now)
	return svc.repo.SchedulesInRange(ctx, core.DateRange{Start: day, End: day})
}

// Week selects schedules for the Monday-Sunday week containing `now`.
func (svc *Service) Week(ctx context.Context, now time.Time) ([]Schedule, error) {
	day := core.Today(now)
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := day.AddDays(-offset)
	return svc.repo.SchedulesInRange(ctx, core.DateRange{Start: monday, End: monday.AddDays(6)})
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSchedule) (Schedule, error) {
	sched, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}

	if us.Subject != "" {
		sched.Subject = us.Subject
	}
	if us.Date != "" {
		date, err := core.ParseCalendarDate(us.Date)
		if err != nil {
			return Schedule{}, err
		}
		sched.Date = date
	}
	if us.StartTime != "" {
		start, err := core.ParseClockTime(us.StartTime)
		if err != nil {
			return Schedule{}, err
		}
		sched.StartTime = start
	}
	if us.EndTime != "" {
		end, err := core.ParseClockTime(us.EndTime)
		if err != nil {
			return Schedule{}, err
		}
		sched.EndTime = end
	}
	if us.Room != "" {
		sched.Room = us.Room
	}
	if us.Description != nil {
		sched.Description = *us.Description
	}
	if us.Status != "" {
		sched.Status = us.Status
	}
	sched.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateSchedule(ctx, sched)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSchedulesByID(ctx, ids...)
}
