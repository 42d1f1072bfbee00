package notifiersvc

import (
	"context"
	"fmt"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
	"github.com/ikedalab/classinfo/core/schedule"
	"github.com/ikedalab/classinfo/core/subscriber"
	"github.com/ikedalab/classinfo/core/task"
	emailsvc "github.com/ikedalab/classinfo/services/email"
	inmemdb "github.com/ikedalab/classinfo/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) (*Notifier, *schedule.Service, *task.Service, *subscriber.Service) {
	t.Helper()

	conf := &core.Config{
		AppName:          "ClassInfo",
		DefaultFromEmail: mail.Address{Name: "ClassInfo", Address: "noreply@classinfo.test"},
		Timezone:         time.UTC,
		Notifier: core.NotifierConfig{
			Enabled:       true,
			Interval:      time.Minute,
			DueSoonWindow: 24 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	require.NoError(t, err)

	schedules := schedule.NewService(inmemdb.NewScheduleRepository(db))
	tasks := task.NewService(inmemdb.NewTaskRepository(db))
	subscribers := subscriber.NewService(inmemdb.NewSubscriberRepository(db))

	emailsvc.SentMessages = nil
	n := NewNotifier(conf, nopLogger{}, emailsvc.NewConsoleServiceMock(conf), schedules, tasks, subscribers)
	return n, schedules, tasks, subscribers
}

func subscribe(t *testing.T, svc *subscriber.Service, email string) {
	t.Helper()
	_, err := svc.Create(context.Background(), subscriber.NewSubscriber{Email: email, Name: "Sub"})
	require.NoError(t, err)
}

func Test_Notifier_sweepLiveClasses(t *testing.T) {
	n, schedules, _, subscribers := setup(t)
	ctx := context.Background()
	subscribe(t, subscribers, "amina@school.edu")

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	_, err := schedules.Create(ctx, schedule.NewSchedule{
		Subject:   "Algorithms",
		Date:      "2025-03-10",
		StartTime: "09:00",
		EndTime:   "10:30",
		Room:      "A-101",
		Status:    schedule.StatusActive,
	})
	require.NoError(t, err)

	n.sweepLiveClasses(ctx, now)
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "Algorithms is live now", emailsvc.SentMessages[0].Subject)
	assert.Equal(t, "amina@school.edu", emailsvc.SentMessages[0].Bcc[0].Address)

	// same class, later in the session: no second reminder
	n.sweepLiveClasses(ctx, now.Add(10*time.Minute))
	assert.Len(t, emailsvc.SentMessages, 1)
}

func Test_Notifier_sweepLiveClasses_skipsNonLive(t *testing.T) {
	n, schedules, _, subscribers := setup(t)
	ctx := context.Background()
	subscribe(t, subscribers, "amina@school.edu")

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err := schedules.Create(ctx, schedule.NewSchedule{
		Subject:   "Algorithms",
		Date:      "2025-03-10",
		StartTime: "09:00",
		EndTime:   "10:30",
		Room:      "A-101",
	})
	require.NoError(t, err)

	n.sweepLiveClasses(ctx, now)
	assert.Empty(t, emailsvc.SentMessages)

	// once the class starts, the transition triggers exactly one email
	n.sweepLiveClasses(ctx, now.Add(90*time.Minute))
	assert.Len(t, emailsvc.SentMessages, 1)
}

func Test_Notifier_sweepDueTasks(t *testing.T) {
	n, _, tasks, subscribers := setup(t)
	ctx := context.Background()
	subscribe(t, subscribers, "amina@school.edu")

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, due := range []time.Time{
		now.Add(2 * time.Hour),  // in window
		now.Add(48 * time.Hour), // beyond window
		now.Add(-2 * time.Hour), // already past due
	} {
		_, err := tasks.Create(ctx, task.NewTask{
			Title:   fmt.Sprintf("Task %d", i),
			Type:    task.TypeAssignment,
			Class:   "CS101",
			DueDate: due,
		}, now)
		require.NoError(t, err)
	}

	n.sweepDueTasks(ctx, now)
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "Due soon: Task 0", emailsvc.SentMessages[0].Subject)

	// second sweep: already reminded
	n.sweepDueTasks(ctx, now.Add(time.Minute))
	assert.Len(t, emailsvc.SentMessages, 1)
}

func Test_Notifier_respectsPreferences(t *testing.T) {
	n, schedules, _, subscribers := setup(t)
	ctx := context.Background()

	optedOut := subscriber.DefaultPreferences()
	optedOut.ScheduleUpdates = false
	_, err := subscribers.Create(ctx, subscriber.NewSubscriber{
		Email: "quiet@school.edu",
		Name:  "Quiet",
		Prefs: &optedOut,
	})
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	_, err = schedules.Create(ctx, schedule.NewSchedule{
		Subject:   "Algorithms",
		Date:      "2025-03-10",
		StartTime: "09:00",
		EndTime:   "10:30",
		Room:      "A-101",
	})
	require.NoError(t, err)

	n.sweepLiveClasses(ctx, now)
	assert.Empty(t, emailsvc.SentMessages)
}

func Test_Notifier_AnnouncementCreated(t *testing.T) {
	n, _, _, subscribers := setup(t)
	subscribe(t, subscribers, "amina@school.edu")

	n.AnnouncementCreated(announcement.Announcement{
		Title:       "Exam week",
		Description: "Rooms reassigned",
		PostedBy:    "Registrar",
	})

	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "New announcement: Exam week", emailsvc.SentMessages[0].Subject)
	assert.NotEmpty(t, emailsvc.SentMessages[0].HTMLContent)
}
