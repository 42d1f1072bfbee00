package schedule_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/schedule"
	inmemdb "github.com/ikedalab/classinfo/storage/database/inmem"
)

func setup(t *testing.T) *schedule.Service {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return schedule.NewService(inmemdb.NewScheduleRepository(db))
}

func create(t *testing.T, svc *schedule.Service, subject, date, start, end string) schedule.Schedule {
	t.Helper()
	s, err := svc.Create(context.Background(), schedule.NewSchedule{
		Subject:   subject,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Room:      "A-101",
		Status:    schedule.StatusActive,
	})
	require.NoError(t, err)
	return s
}

func Test_Service_InRange(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	create(t, svc, "Before", "2025-03-09", "09:00", "10:00")
	onStart := create(t, svc, "OnStart", "2025-03-10", "09:00", "10:00")
	onEnd := create(t, svc, "OnEnd", "2025-03-16", "09:00", "10:00")
	create(t, svc, "After", "2025-03-17", "09:00", "10:00")

	items, total, err := svc.InRange(ctx, "2025-03-10", "2025-03-16", core.NewPagination(1, core.MaxPageLimit))
	require.NoError(t, err)

	// both boundary days included, neighbors excluded
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, onStart.ID, items[0].ID)
	assert.Equal(t, onEnd.ID, items[1].ID)
}

func Test_Service_InRange_pagination(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	for day := 10; day <= 14; day++ {
		create(t, svc, "Class", fmt.Sprintf("2025-03-%02d", day), "09:00", "10:00")
	}

	items, total, err := svc.InRange(ctx, "2025-03-10", "2025-03-16", core.NewPagination(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "2025-03-12", items[0].Date.String())
	assert.Equal(t, "2025-03-13", items[1].Date.String())

	// past the last page
	items, total, err = svc.InRange(ctx, "2025-03-10", "2025-03-16", core.NewPagination(9, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, items)
}

func Test_Service_InRange_errors(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, _, err := svc.InRange(ctx, "2025-03-16", "2025-03-10", core.NewPagination(1, 10))
	assert.Equal(t, core.ErrInvalidRange, err)

	_, _, err = svc.InRange(ctx, "03/10/2025", "2025-03-16", core.NewPagination(1, 10))
	assert.Equal(t, core.ErrInvalidDateFormat, err)
}

func Test_Service_Today(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	today := create(t, svc, "Today", "2025-03-10", "09:00", "10:00")
	create(t, svc, "Tomorrow", "2025-03-11", "09:00", "10:00")

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items, err := svc.Today(ctx, now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, today.ID, items[0].ID)
}

func Test_Service_Week(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	create(t, svc, "PrevSunday", "2025-03-09", "09:00", "10:00")
	monday := create(t, svc, "Monday", "2025-03-10", "09:00", "10:00")
	sunday := create(t, svc, "Sunday", "2025-03-16", "09:00", "10:00")
	create(t, svc, "NextMonday", "2025-03-17", "09:00", "10:00")

	// Wednesday of the 2025-03-10 week
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	items, err := svc.Week(ctx, now)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, monday.ID, items[0].ID)
	assert.Equal(t, sunday.ID, items[1].ID)
}

func Test_Service_Filter_ordering(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	late := create(t, svc, "Late", "2025-03-10", "14:00", "15:00")
	early := create(t, svc, "Early", "2025-03-10", "08:00", "09:00")
	prevDay := create(t, svc, "PrevDay", "2025-03-09", "16:00", "17:00")

	items, total, err := svc.Filter(ctx, schedule.QueryFilter{}, core.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)

	// ordered by date then start time
	assert.Equal(t, prevDay.ID, items[0].ID)
	assert.Equal(t, early.ID, items[1].ID)
	assert.Equal(t, late.ID, items[2].ID)
}

func Test_Service_Filter_pagination(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		create(t, svc, "Class", "2025-03-10", "09:00", "10:00")
	}

	items, total, err := svc.Filter(ctx, schedule.QueryFilter{}, core.NewPagination(3, 10))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, items, 5) // last partial page

	// past the end: empty page, total still reported
	items, total, err = svc.Filter(ctx, schedule.QueryFilter{}, core.NewPagination(9, 10))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, items)
}

func Test_Service_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	s := create(t, svc, "Algorithms", "2025-03-10", "09:00", "10:30")

	desc := "bring laptops"
	updated, err := svc.Update(ctx, s.ID, schedule.UpdateSchedule{
		Room:        "B-202",
		Description: &desc,
		Status:      schedule.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, "B-202", updated.Room)
	assert.Equal(t, "bring laptops", updated.Description)
	assert.Equal(t, schedule.StatusCancelled, updated.Status)
	// untouched fields keep their values
	assert.Equal(t, "Algorithms", updated.Subject)
	assert.Equal(t, s.StartTime, updated.StartTime)

	_, err = svc.Update(ctx, "no-such-id", schedule.UpdateSchedule{Room: "C-303"})
	assert.Equal(t, schedule.ErrNotFound, err)
}

func Test_Service_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	s := create(t, svc, "Algorithms", "2025-03-10", "09:00", "10:30")
	require.NoError(t, svc.Delete(ctx, s.ID))

	_, err := svc.GetByID(ctx, s.ID)
	assert.Equal(t, schedule.ErrNotFound, err)
}
