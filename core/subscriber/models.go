package subscriber

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ikedalab/classinfo/core"
)

// Preferences gates which notification kinds a subscriber receives.
type Preferences struct {
	EmailNotifications bool `json:"email_notifications" db:"email_notifications"`
	Announcements      bool `json:"announcements" db:"announcements"`
	ScheduleUpdates    bool `json:"schedule_updates" db:"schedule_updates"`
	TaskReminders      bool `json:"task_reminders" db:"task_reminders"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		Announcements:      true,
		ScheduleUpdates:    true,
		TaskReminders:      true,
	}
}

// Subscriber is a notification recipient. There are no accounts or
// credentials; subscribing is an explicit opt-in by email.
type Subscriber struct {
	ID          string      `json:"id" db:"id"`
	Email       string      `json:"email" db:"email"`
	Name        string      `json:"name" db:"name"`
	StudentID   string      `json:"student_id,omitempty" db:"student_id"`
	ClassName   string      `json:"class_name" db:"class_name"`
	Preferences Preferences `json:"preferences" db:"preferences"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// NewSubscriber contains information needed to create a new Subscriber.
type NewSubscriber struct {
	Email     string       `json:"email" validate:"required,email"`
	Name      string       `json:"name" validate:"required,max=100"`
	StudentID string       `json:"student_id" validate:"omitempty,max=50"`
	ClassName string       `json:"class_name" validate:"omitempty,max=100"`
	Prefs     *Preferences `json:"preferences"`
}

func (ns *NewSubscriber) Validate(validate *validator.Validate, svc *Service) error {
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.ClassName = core.CleanString(ns.ClassName)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ns.Email)
}

// UpdateSubscriber defines what information may be provided to modify an
// existing Subscriber.
type UpdateSubscriber struct {
	Name      string       `json:"name" validate:"omitempty,max=100"`
	StudentID string       `json:"student_id" validate:"omitempty,max=50"`
	ClassName string       `json:"class_name" validate:"omitempty,max=100"`
	Prefs     *Preferences `json:"preferences"`
	IsActive  *bool        `json:"is_active"`
}

func (us *UpdateSubscriber) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.StudentID = core.CleanString(us.StudentID)
	us.ClassName = core.CleanString(us.ClassName)
	return validate.Struct(us)
}
