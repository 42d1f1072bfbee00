package announcement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ikedalab/classinfo/core"
)

var ErrNotFound = errors.New("announcement not found")

const (
	defaultLatestLimit = 5
	maxLatestLimit     = 10
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		// FilterAnnouncements returns the filtered page plus the unpaginated
		// total, ordered per `ord` (created_at descending by default).
		FilterAnnouncements(ctx context.Context, filter QueryFilter, ord core.DBOrdering, page core.Pagination) ([]Announcement, int, error)
		// AnnouncementsInRange returns announcements posted on calendar days
		// within the inclusive range, most recent first.
		AnnouncementsInRange(ctx context.Context, r core.DateRange, loc *time.Location) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) error
	}

	// Broadcaster is notified after an announcement is created so it can
	// fan the announcement out to subscribers. Delivery is best-effort.
	Broadcaster interface {
		AnnouncementCreated(a Announcement)
	}

	Service struct {
		repo      Repository
		broadcast Broadcaster // optional
	}
)

func NewService(repo Repository, broadcast Broadcaster) *Service {
	return &Service{repo: repo, broadcast: broadcast}
}

func (svc *Service) Create(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	now := time.Now().UTC()
	a := Announcement{
		ID:          uuid.NewString(),
		Title:       na.Title,
		Description: na.Description,
		PostedBy:    na.PostedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a, err := svc.repo.CreateAnnouncement(ctx, a)
	if err != nil {
		return Announcement{}, err
	}
	if svc.broadcast != nil {
		svc.broadcast.AnnouncementCreated(a)
	}
	return a, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ord core.DBOrdering, page core.Pagination) ([]Announcement, int, error) {
	filter.Clean()
	if ord.Field == "" {
		ord = core.DBOrdering{Field: "created_at", Ascending: false}
	}
	return svc.repo.FilterAnnouncements(ctx, filter, ord, page)
}

// Latest returns the most recent announcements, limit clamped to 1..10.
func (svc *Service) Latest(ctx context.Context, limit int) ([]Announcement, error) {
	switch {
	case limit < 1:
		limit = defaultLatestLimit
	case limit > maxLatestLimit:
		limit = maxLatestLimit
	}
	items, _, err := svc.repo.FilterAnnouncements(
		ctx,
		QueryFilter{},
		core.DBOrdering{Field: "created_at", Ascending: false},
		core.Pagination{Page: 1, Limit: limit},
	)
	return items, err
}

// InRange selects a page of announcements posted within inclusive
// calendar-day bounds, evaluated in `loc`; the returned total counts the
// whole range.
func (svc *Service) InRange(ctx context.Context, start, end string, loc *time.Location, page core.Pagination) ([]Announcement, int, error) {
	r, err := core.NewDateRange(start, end)
	if err != nil {
		return nil, 0, err
	}
	items, err := svc.repo.AnnouncementsInRange(ctx, r, loc)
	if err != nil {
		return nil, 0, err
	}
	total := len(items)
	lo, hi := page.Slice(total)
	return items[lo:hi], total, nil
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error) {
	a, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.PostedBy != "" {
		a.PostedBy = ua.PostedBy
	}
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAnnouncementsByID(ctx, ids...)
}
