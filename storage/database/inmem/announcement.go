package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, a)
	return a, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) FilterAnnouncements(_ context.Context, filter announcement.QueryFilter, ord core.DBOrdering, page core.Pagination) ([]announcement.Announcement, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]announcement.Announcement, 0, len(repo.db.rows))
	for _, a := range repo.db.rows {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(a.Title), s) &&
				!strings.Contains(strings.ToLower(a.Description), s) {
				continue
			}
		}
		matches = append(matches, a)
	}

	less := func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) }
	switch ord.Field {
	case "title":
		less = func(i, j int) bool { return matches[i].Title < matches[j].Title }
	case "posted_by":
		less = func(i, j int) bool { return matches[i].PostedBy < matches[j].PostedBy }
	case "updated_at":
		less = func(i, j int) bool { return matches[i].UpdatedAt.Before(matches[j].UpdatedAt) }
	}
	if !ord.Ascending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(matches, less)

	total := len(matches)
	lo, hi := page.Slice(total)
	return matches[lo:hi], total, nil
}

func (repo *announcementRepository) AnnouncementsInRange(_ context.Context, r core.DateRange, loc *time.Location) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]announcement.Announcement, 0, len(repo.db.rows))
	for _, a := range repo.db.rows {
		if r.ContainsInstant(a.CreatedAt, loc) {
			matches = append(matches, a)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[j].CreatedAt.Before(matches[i].CreatedAt) })
	return matches, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == a.ID {
			repo.db.rows[i] = a
			return a, nil
		}
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) DeleteAnnouncementsByID(_ context.Context, ids ...string) error {
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
