// Package notifiersvc fans out email notifications to subscribers: live-class
// reminders, task due-soon reminders and new-announcement broadcasts.
package notifiersvc

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
	"github.com/ikedalab/classinfo/core/schedule"
	"github.com/ikedalab/classinfo/core/subscriber"
	"github.com/ikedalab/classinfo/core/task"
)

type Notifier struct {
	conf        *core.Config
	logger      core.Logger
	mailSvc     core.EmailService
	schedules   *schedule.Service
	tasks       *task.Service
	subscribers *subscriber.Service

	cron *cron.Cron

	mu sync.Mutex
	// last display status seen per schedule ID; a transition into
	// "live" triggers a reminder, so each class is announced once.
	lastSeen map[string]schedule.DisplayStatus
	// task IDs already reminded about; reset happens implicitly when
	// the task leaves the due-soon window (terminal or past due).
	reminded map[string]bool
}

var _ announcement.Broadcaster = (*Notifier)(nil)

func NewNotifier(
	conf *core.Config,
	logger core.Logger,
	mailSvc core.EmailService,
	schedules *schedule.Service,
	tasks *task.Service,
	subscribers *subscriber.Service,
) *Notifier {
	return &Notifier{
		conf:        conf,
		logger:      logger,
		mailSvc:     mailSvc,
		schedules:   schedules,
		tasks:       tasks,
		subscribers: subscribers,
		cron:        cron.New(cron.WithLocation(conf.Timezone)),
		lastSeen:    make(map[string]schedule.DisplayStatus),
		reminded:    make(map[string]bool),
	}
}

// Start schedules the periodic sweep. No-op when the notifier is disabled.
func (n *Notifier) Start() error {
	if !n.conf.Notifier.Enabled {
		n.logger.Info("notifier disabled; not starting")
		return nil
	}
	spec := fmt.Sprintf("@every %s", n.conf.Notifier.Interval)
	if _, err := n.cron.AddFunc(spec, n.sweep); err != nil {
		return err
	}
	n.cron.Start()
	n.logger.Info(fmt.Sprintf("notifier started; sweeping every %s", n.conf.Notifier.Interval))
	return nil
}

// Stop halts the cron scheduler and waits for in-flight jobs.
func (n *Notifier) Stop() {
	<-n.cron.Stop().Done()
}

func (n *Notifier) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), n.conf.Notifier.Interval)
	defer cancel()

	now := time.Now().In(n.conf.Timezone)
	n.sweepLiveClasses(ctx, now)
	n.sweepDueTasks(ctx, now)
}

func (n *Notifier) sweepLiveClasses(ctx context.Context, now time.Time) {
	today, err := n.schedules.Today(ctx, now)
	if err != nil {
		n.logger.Error(fmt.Sprintf("notifier: fetching today's schedules: %v", err), err)
		return
	}

	n.mu.Lock()
	var wentLive []schedule.Schedule
	seen := make(map[string]bool, len(today))
	for _, s := range today {
		status := schedule.ResolveDisplayStatus(s, now)
		seen[s.ID] = true
		if status == schedule.DisplayLiveNow && n.lastSeen[s.ID] != schedule.DisplayLiveNow {
			wentLive = append(wentLive, s)
		}
		n.lastSeen[s.ID] = status
	}
	// drop entries for schedules no longer on today's list
	for id := range n.lastSeen {
		if !seen[id] {
			delete(n.lastSeen, id)
		}
	}
	n.mu.Unlock()

	if len(wentLive) == 0 {
		return
	}

	recipients, err := n.recipients(ctx, subscriber.KindScheduleUpdates)
	if err != nil || len(recipients) == 0 {
		return
	}

	messages := make([]*core.EmailMessage, 0, len(wentLive))
	for _, s := range wentLive {
		messages = append(messages, &core.EmailMessage{
			Bcc:          recipients,
			Subject:      fmt.Sprintf("%s is live now", s.Subject),
			TemplateName: "class_live",
			TemplateData: struct {
				Subject     string
				Room        string
				StartTime   string
				EndTime     string
				Description string
			}{s.Subject, s.Room, s.StartTime.String(), s.EndTime.String(), s.Description},
		})
	}
	n.mailSvc.SendMessages(messages...)
}

func (n *Notifier) sweepDueTasks(ctx context.Context, now time.Time) {
	filter := task.QueryFilter{
		DueAfter:        now,
		DueBefore:       now.Add(n.conf.Notifier.DueSoonWindow),
		ExcludeTerminal: true,
	}
	dueSoon, _, err := n.tasks.Filter(ctx, filter, task.Sort{By: "due_date"}, core.Pagination{Page: 1, Limit: core.MaxPageLimit})
	if err != nil {
		n.logger.Error(fmt.Sprintf("notifier: fetching due tasks: %v", err), err)
		return
	}

	n.mu.Lock()
	var toRemind []task.Task
	inWindow := make(map[string]bool, len(dueSoon))
	for _, t := range dueSoon {
		inWindow[t.ID] = true
		if !n.reminded[t.ID] {
			toRemind = append(toRemind, t)
			n.reminded[t.ID] = true
		}
	}
	for id := range n.reminded {
		if !inWindow[id] {
			delete(n.reminded, id)
		}
	}
	n.mu.Unlock()

	if len(toRemind) == 0 {
		return
	}

	recipients, err := n.recipients(ctx, subscriber.KindTaskReminders)
	if err != nil || len(recipients) == 0 {
		return
	}

	messages := make([]*core.EmailMessage, 0, len(toRemind))
	for _, t := range toRemind {
		messages = append(messages, &core.EmailMessage{
			Bcc:          recipients,
			Subject:      fmt.Sprintf("Due soon: %s", t.Title),
			TemplateName: "task_due",
			TemplateData: struct {
				Title    string
				Class    string
				Due      string
				Priority string
			}{t.Title, t.Class, t.DueDate.In(n.conf.Timezone).Format("Mon, 02 Jan 2006 15:04"), string(t.Priority)},
		})
	}
	n.mailSvc.SendMessages(messages...)
}

// AnnouncementCreated emails every opted-in subscriber about a new
// announcement.
func (n *Notifier) AnnouncementCreated(a announcement.Announcement) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recipients, err := n.recipients(ctx, subscriber.KindAnnouncements)
	if err != nil || len(recipients) == 0 {
		return
	}

	n.mailSvc.SendMessages(&core.EmailMessage{
		Bcc:          recipients,
		Subject:      fmt.Sprintf("New announcement: %s", a.Title),
		TemplateName: "announcement",
		TemplateData: struct {
			Title       string
			Description string
			PostedBy    string
		}{a.Title, a.Description, a.PostedBy},
	})
}

func (n *Notifier) recipients(ctx context.Context, kind subscriber.Kind) ([]mail.Address, error) {
	subs, err := n.subscribers.Recipients(ctx, kind)
	if err != nil {
		n.logger.Error(fmt.Sprintf("notifier: fetching %s recipients: %v", kind, err), err)
		return nil, err
	}
	addrs := make([]mail.Address, 0, len(subs))
	for _, sub := range subs {
		addrs = append(addrs, mail.Address{Name: sub.Name, Address: sub.Email})
	}
	return addrs, nil
}
