package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core/subscriber"
)

type subscriberRepository struct {
	db *sqlx.DB
}

var _ subscriber.Repository = (*subscriberRepository)(nil)

func NewSubscriberRepository(db *sqlx.DB) subscriber.Repository {
	return &subscriberRepository{db: db}
}

// subscriberRow flattens the embedded preferences.
type subscriberRow struct {
	ID                 string    `db:"id"`
	Email              string    `db:"email"`
	Name               string    `db:"name"`
	StudentID          string    `db:"student_id"`
	ClassName          string    `db:"class_name"`
	EmailNotifications bool      `db:"email_notifications"`
	Announcements      bool      `db:"announcements"`
	ScheduleUpdates    bool      `db:"schedule_updates"`
	TaskReminders      bool      `db:"task_reminders"`
	IsActive           bool      `db:"is_active"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r subscriberRow) toSubscriber() subscriber.Subscriber {
	return subscriber.Subscriber{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		StudentID: r.StudentID,
		ClassName: r.ClassName,
		Preferences: subscriber.Preferences{
			EmailNotifications: r.EmailNotifications,
			Announcements:      r.Announcements,
			ScheduleUpdates:    r.ScheduleUpdates,
			TaskReminders:      r.TaskReminders,
		},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toSubscriberRow(sub subscriber.Subscriber) subscriberRow {
	return subscriberRow{
		ID:                 sub.ID,
		Email:              sub.Email,
		Name:               sub.Name,
		StudentID:          sub.StudentID,
		ClassName:          sub.ClassName,
		EmailNotifications: sub.Preferences.EmailNotifications,
		Announcements:      sub.Preferences.Announcements,
		ScheduleUpdates:    sub.Preferences.ScheduleUpdates,
		TaskReminders:      sub.Preferences.TaskReminders,
		IsActive:           sub.IsActive,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}

func (repo *subscriberRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...subscriber.Subscriber) error {
	q := `SELECT COUNT(*) FROM subscriber WHERE email = $1`
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]string, len(excluded))
		for i, sub := range excluded {
			ids[i] = sub.ID
		}
		var err error
		q, args, err = sqlx.In(`SELECT COUNT(*) FROM subscriber WHERE email = ? AND id NOT IN (?)`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness check")
		}
		q = repo.db.Rebind(q)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return subscriber.ErrEmailExists
	}
	return nil
}

func (repo *subscriberRepository) CreateSubscriber(ctx context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	const q = `
INSERT INTO subscriber (id, email, name, student_id, class_name, email_notifications, announcements,
                        schedule_updates, task_reminders, is_active, created_at, updated_at)
VALUES (:id, :email, :name, :student_id, :class_name, :email_notifications, :announcements,
        :schedule_updates, :task_reminders, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toSubscriberRow(sub)); err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "inserting subscriber")
	}
	return sub, nil
}

func (repo *subscriberRepository) QueryAllSubscribers(ctx context.Context) ([]subscriber.Subscriber, error) {
	var rows []subscriberRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM subscriber ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying subscribers")
	}
	subs := make([]subscriber.Subscriber, len(rows))
	for i, r := range rows {
		subs[i] = r.toSubscriber()
	}
	return subs, nil
}

func (repo *subscriberRepository) GetSubscriberByID(ctx context.Context, id string) (subscriber.Subscriber, error) {
	var row subscriberRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM subscriber WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return subscriber.Subscriber{}, subscriber.ErrNotFound
	}
	if err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "getting subscriber")
	}
	return row.toSubscriber(), nil
}

func (repo *subscriberRepository) GetSubscriberByEmail(ctx context.Context, email string) (subscriber.Subscriber, error) {
	var row subscriberRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM subscriber WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return subscriber.Subscriber{}, subscriber.ErrNotFound
	}
	if err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "getting subscriber by email")
	}
	return row.toSubscriber(), nil
}

func (repo *subscriberRepository) UpdateSubscriber(ctx context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	const q = `
UPDATE subscriber
SET email = :email, name = :name, student_id = :student_id, class_name = :class_name,
    email_notifications = :email_notifications, announcements = :announcements,
    schedule_updates = :schedule_updates, task_reminders = :task_reminders,
    is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toSubscriberRow(sub))
	if err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "updating subscriber")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscriber.Subscriber{}, subscriber.ErrNotFound
	}
	return sub, nil
}

func (repo *subscriberRepository) DeleteSubscribersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM subscriber WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building subscriber delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting subscribers")
	}
	return nil
}
