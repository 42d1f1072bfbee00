package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	const q = `
INSERT INTO announcement (id, title, description, posted_by, created_at, updated_at)
VALUES (:id, :title, :description, :posted_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, a); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := repo.db.GetContext(ctx, &a, `SELECT * FROM announcement WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return a, nil
}

func (repo *announcementRepository) FilterAnnouncements(ctx context.Context, filter announcement.QueryFilter, ord core.DBOrdering, page core.Pagination) ([]announcement.Announcement, int, error) {
	var where string
	var args []interface{}
	if filter.Search != "" {
		where = " WHERE (title ILIKE $1 OR description ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcement"+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting announcements")
	}

	switch ord.Field {
	case "created_at", "updated_at", "title", "posted_by":
	default:
		ord = core.DBOrdering{Field: "created_at", Ascending: false}
	}
	listQ := fmt.Sprintf(
		"SELECT * FROM announcement%s ORDER BY %s, id LIMIT %d OFFSET %d",
		where, ord, page.Limit, page.Offset(),
	)
	items := make([]announcement.Announcement, 0, page.Limit)
	if err := repo.db.SelectContext(ctx, &items, listQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering announcements")
	}
	return items, total, nil
}

func (repo *announcementRepository) AnnouncementsInRange(ctx context.Context, r core.DateRange, loc *time.Location) ([]announcement.Announcement, error) {
	lo, hi := r.Bounds(loc)
	const q = `
SELECT * FROM announcement
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC`
	var items []announcement.Announcement
	if err := repo.db.SelectContext(ctx, &items, q, lo, hi); err != nil {
		return nil, errors.Wrap(err, "querying announcements in range")
	}
	return items, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	const q = `
UPDATE announcement
SET title = :title, description = :description, posted_by = :posted_by, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, a)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM announcement WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building announcement delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return nil
}
