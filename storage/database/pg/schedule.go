package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/schedule"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	const q = `
INSERT INTO schedule (id, subject, date, start_time, end_time, room, description, status, created_at, updated_at)
VALUES (:id, :subject, :date, :start_time, :end_time, :room, :description, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, sched); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "inserting schedule")
	}
	return sched, nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id string) (schedule.Schedule, error) {
	var sched schedule.Schedule
	err := repo.db.GetContext(ctx, &sched, `SELECT * FROM schedule WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "getting schedule")
	}
	return sched, nil
}

func (repo *scheduleRepository) FilterSchedules(ctx context.Context, filter schedule.QueryFilter, page core.Pagination) ([]schedule.Schedule, int, error) {
	where, args := buildScheduleWhere(filter)

	var total int
	countQ := "SELECT COUNT(*) FROM schedule" + where
	if err := repo.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting schedules")
	}

	listQ := fmt.Sprintf(
		"SELECT * FROM schedule%s ORDER BY date, start_time, created_at LIMIT %d OFFSET %d",
		where, page.Limit, page.Offset(),
	)
	scheds := make([]schedule.Schedule, 0, page.Limit)
	if err := repo.db.SelectContext(ctx, &scheds, listQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering schedules")
	}
	return scheds, total, nil
}

func (repo *scheduleRepository) SchedulesInRange(ctx context.Context, r core.DateRange) ([]schedule.Schedule, error) {
	const q = `
SELECT * FROM schedule
WHERE date >= $1 AND date <= $2
ORDER BY date, start_time, created_at`
	var scheds []schedule.Schedule
	if err := repo.db.SelectContext(ctx, &scheds, q, r.Start.String(), r.End.String()); err != nil {
		return nil, errors.Wrap(err, "querying schedules in range")
	}
	return scheds, nil
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	const q = `
UPDATE schedule
SET subject = :subject, date = :date, start_time = :start_time, end_time = :end_time,
    room = :room, description = :description, status = :status, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, sched)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "updating schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return sched, nil
}

func (repo *scheduleRepository) DeleteSchedulesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM schedule WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building schedule delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting schedules")
	}
	return nil
}

func buildScheduleWhere(filter schedule.QueryFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(subject ILIKE %s OR room ILIKE %s OR description ILIKE %s)", p, p, p))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Room != "" {
		conds = append(conds, "room ILIKE "+arg("%"+filter.Room+"%"))
	}
	if filter.Subject != "" {
		conds = append(conds, "subject ILIKE "+arg("%"+filter.Subject+"%"))
	}
	if filter.Date != "" {
		conds = append(conds, "date = "+arg(filter.Date))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
