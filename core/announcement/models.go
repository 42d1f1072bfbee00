package announcement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ikedalab/classinfo/core"
)

type Announcement struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	PostedBy    string    `json:"posted_by" db:"posted_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	PostedBy    string `json:"posted_by" validate:"required,max=100"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.PostedBy = core.CleanString(na.PostedBy)
	return validate.Struct(na)
}

// UpdateAnnouncement defines what information may be provided to modify an
// existing Announcement. Empty fields keep their stored values.
type UpdateAnnouncement struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	PostedBy    string `json:"posted_by" validate:"omitempty,max=100"`
}

func (ua *UpdateAnnouncement) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	ua.PostedBy = core.CleanString(ua.PostedBy)
	return validate.Struct(ua)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Search string `query:"search"` // case-insensitive match on title or description
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
