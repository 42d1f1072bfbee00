package subscriber

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ikedalab/classinfo/core"
)

var (
	ErrNotFound    = errors.New("subscriber not found")
	ErrEmailExists = errors.New("a subscriber with this email already exists")
)

// Kind selects which preference flag gates a notification fan-out.
type Kind string

const (
	KindAnnouncements   Kind = "announcements"
	KindScheduleUpdates Kind = "schedule_updates"
	KindTaskReminders   Kind = "task_reminders"
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Subscriber) error
		CreateSubscriber(ctx context.Context, sub Subscriber) (Subscriber, error)
		QueryAllSubscribers(ctx context.Context) ([]Subscriber, error)
		GetSubscriberByID(ctx context.Context, id string) (Subscriber, error)
		GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error)
		UpdateSubscriber(ctx context.Context, sub Subscriber) (Subscriber, error)
		DeleteSubscribersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(email string, excluded ...Subscriber) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubscriber) (Subscriber, error) {
	now := time.Now().UTC()
	prefs := DefaultPreferences()
	if ns.Prefs != nil {
		prefs = *ns.Prefs
	}
	sub := Subscriber{
		ID:          uuid.NewString(),
		Email:       ns.Email,
		Name:        ns.Name,
		StudentID:   ns.StudentID,
		ClassName:   ns.ClassName,
		Preferences: prefs,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubscriber(ctx, sub)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subscriber, error) {
	return svc.repo.QueryAllSubscribers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subscriber, error) {
	return svc.repo.GetSubscriberByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Subscriber, error) {
	return svc.repo.GetSubscriberByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Recipients returns active subscribers opted into the given kind.
func (svc *Service) Recipients(ctx context.Context, kind Kind) ([]Subscriber, error) {
	subs, err := svc.repo.QueryAllSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		if !sub.IsActive || !sub.Preferences.EmailNotifications {
			continue
		}
		var optedIn bool
		switch kind {
		case KindAnnouncements:
			optedIn = sub.Preferences.Announcements
		case KindScheduleUpdates:
			optedIn = sub.Preferences.ScheduleUpdates
		case KindTaskReminders:
			optedIn = sub.Preferences.TaskReminders
		}
		if optedIn {
			recipients = append(recipients, sub)
		}
	}
	return recipients, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubscriber) (Subscriber, error) {
	sub, err := svc.repo.GetSubscriberByID(ctx, id)
	if err != nil {
		return Subscriber{}, err
	}
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.StudentID != "" {
		sub.StudentID = us.StudentID
	}
	if us.ClassName != "" {
		sub.ClassName = us.ClassName
	}
	if us.Prefs != nil {
		sub.Preferences = *us.Prefs
	}
	if us.IsActive != nil {
		sub.IsActive = *us.IsActive
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubscriber(ctx, sub)
}

// Unsubscribe deactivates the subscriber with the given email.
func (svc *Service) Unsubscribe(ctx context.Context, email string) error {
	sub, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	sub.IsActive = false
	sub.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateSubscriber(ctx, sub)
	return err
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubscribersByID(ctx, ids...)
}
