package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) CreateSchedule(_ context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, sched)
	return sched, nil
}

func (repo *scheduleRepository) GetScheduleByID(_ context.Context, id string) (schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sched := range repo.db.rows {
		if sched.ID == id {
			return sched, nil
		}
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) FilterSchedules(_ context.Context, filter schedule.QueryFilter, page core.Pagination) ([]schedule.Schedule, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Schedule, 0, len(repo.db.rows))
	for _, sched := range repo.db.rows {
		if scheduleMatches(sched, filter) {
			matches = append(matches, sched)
		}
	}
	sortSchedules(matches)

	total := len(matches)
	lo, hi := page.Slice(total)
	return matches[lo:hi], total, nil
}

func (repo *scheduleRepository) SchedulesInRange(_ context.Context, r core.DateRange) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Schedule, 0, len(repo.db.rows))
	for _, sched := range repo.db.rows {
		if r.Contains(sched.Date) {
			matches = append(matches, sched)
		}
	}
	sortSchedules(matches)
	return matches, nil
}

func (repo *scheduleRepository) UpdateSchedule(_ context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == sched.ID {
			repo.db.rows[i] = sched
			return sched, nil
		}
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) DeleteSchedulesByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0]
	for _, row := range repo.db.rows {
		var drop bool
		for _, id := range ids {
			if row.ID == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, row)
		}
	}
	repo.db.rows = kept
	return nil
}

func scheduleMatches(sched schedule.Schedule, filter schedule.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(sched.Subject), s) &&
			!strings.Contains(strings.ToLower(sched.Room), s) &&
			!strings.Contains(strings.ToLower(sched.Description), s) {
			return false
		}
	}
	if filter.Status != "" && sched.Status != filter.Status {
		return false
	}
	if filter.Room != "" && !strings.Contains(strings.ToLower(sched.Room), strings.ToLower(filter.Room)) {
		return false
	}
	if filter.Subject != "" && !strings.Contains(strings.ToLower(sched.Subject), strings.ToLower(filter.Subject)) {
		return false
	}
	if filter.Date != "" {
		day, err := core.ParseCalendarDate(filter.Date)
		if err != nil || sched.Date != day {
			return false
		}
	}
	return true
}

func sortSchedules(scheds []schedule.Schedule) {
	sort.SliceStable(scheds, func(i, j int) bool {
		if scheds[i].Date != scheds[j].Date {
			return scheds[i].Date.Before(scheds[j].Date)
		}
		return scheds[i].StartTime.MinuteOfDay() < scheds[j].StartTime.MinuteOfDay()
	})
}
