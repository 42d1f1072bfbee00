package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ikedalab/classinfo/core"
)

// Status is the persisted status, set explicitly by a user action. It is
// never auto-mutated by status resolution.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// DisplayStatus is the transient status recomputed on every read. It is
// shown to users but never stored.
type DisplayStatus string

const (
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayLiveNow   DisplayStatus = "live"
	DisplayCompleted DisplayStatus = "completed"
	DisplayCancelled DisplayStatus = "cancelled"
)

type Schedule struct {
	ID          string            `json:"id" db:"id"`
	Subject     string            `json:"subject" db:"subject"`
	Date        core.CalendarDate `json:"date" db:"date"`
	StartTime   core.ClockTime    `json:"start_time" db:"start_time"`
	EndTime     core.ClockTime    `json:"end_time" db:"end_time"`
	Room        string            `json:"room" db:"room"`
	Description string            `json:"description,omitempty" db:"description"`
	Status      Status            `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"` // UTC
}

// Rendered is a Schedule together with its derived display status.
type Rendered struct {
	Schedule
	DisplayStatus DisplayStatus `json:"display_status"`
}

func Render(s Schedule, now time.Time) Rendered {
	return Rendered{Schedule: s, DisplayStatus: ResolveDisplayStatus(s, now)}
}

func RenderAll(items []Schedule, now time.Time) []Rendered {
	rendered := make([]Rendered, len(items))
	for i, s := range items {
		rendered[i] = Render(s, now)
	}
	return rendered
}

// NewSchedule contains information needed to create a new Schedule.
type NewSchedule struct {
	Subject     string `json:"subject" validate:"required,max=100"`
	Date        string `json:"date" validate:"required,datestr"`
	StartTime   string `json:"start_time" validate:"required,timestr"`
	EndTime     string `json:"end_time" validate:"required,timestr"`
	Room        string `json:"room" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Status      Status `json:"status" validate:"omitempty,oneof=active cancelled completed"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.Room = core.CleanString(ns.Room)
	ns.Description = core.CleanString(ns.Description)
	if ns.Status == "" {
		ns.Status = StatusActive
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return checkTimeOrder(ns.StartTime, ns.EndTime)
}

// UpdateSchedule defines what information may be provided to modify an
// existing Schedule. Empty fields keep their stored values.
type UpdateSchedule struct {
	Subject     string  `json:"subject" validate:"omitempty,max=100"`
	Date        string  `json:"date" validate:"omitempty,datestr"`
	StartTime   string  `json:"start_time" validate:"omitempty,timestr"`
	EndTime     string  `json:"end_time" validate:"omitempty,timestr"`
	Room        string  `json:"room" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      Status  `json:"status" validate:"omitempty,oneof=active cancelled completed"`
}

func (us *UpdateSchedule) Validate(orig Schedule, validate *validator.Validate) error {
	us.Subject = core.CleanString(us.Subject)
	us.Room = core.CleanString(us.Room)
	if us.Description != nil {
		desc := core.CleanString(*us.Description)
		us.Description = &desc
	}

	if err := validate.Struct(us); err != nil {
		return err
	}

	start := orig.StartTime.String()
	if us.StartTime != "" {
		start = us.StartTime
	}
	end := orig.EndTime.String()
	if us.EndTime != "" {
		end = us.EndTime
	}
	return checkTimeOrder(start, end)
}

func checkTimeOrder(start, end string) error {
	st, err := core.ParseClockTime(start)
	if err != nil {
		return core.ErrInvalidTimeFormat
	}
	et, err := core.ParseClockTime(end)
	if err != nil {
		return core.ErrInvalidTimeFormat
	}
	if et.MinuteOfDay() <= st.MinuteOfDay() {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Search  string `query:"search"` // case-insensitive match on subject, room or description
	Status  Status `query:"status"`
	Room    string `query:"room"`
	Subject string `query:"subject"`
	Date    string `query:"date"` // single calendar day
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Room == "" && qf.Subject == "" && qf.Date == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Room = core.CleanString(qf.Room)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Date = core.CleanString(qf.Date)
}
