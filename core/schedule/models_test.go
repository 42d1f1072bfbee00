package schedule_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/schedule"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func Test_NewSchedule_Validate(t *testing.T) {
	validate := newValidator(t)

	tests := []struct {
		name    string
		data    schedule.NewSchedule
		wantErr bool
	}{
		{
			name: "valid",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "2025-03-10",
				StartTime: "09:00", EndTime: "10:30", Room: "A-101",
			},
		},
		{
			name: "missing subject",
			data: schedule.NewSchedule{
				Date: "2025-03-10", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
			},
			wantErr: true,
		},
		{
			name: "bad date",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "10/03/2025",
				StartTime: "09:00", EndTime: "10:30", Room: "A-101",
			},
			wantErr: true,
		},
		{
			name: "bad time",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "2025-03-10",
				StartTime: "9am", EndTime: "10:30", Room: "A-101",
			},
			wantErr: true,
		},
		{
			name: "end before start",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "2025-03-10",
				StartTime: "10:30", EndTime: "09:00", Room: "A-101",
			},
			wantErr: true,
		},
		{
			name: "end equals start",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "2025-03-10",
				StartTime: "09:00", EndTime: "09:00", Room: "A-101",
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			data: schedule.NewSchedule{
				Subject: "Algorithms", Date: "2025-03-10",
				StartTime: "09:00", EndTime: "10:30", Room: "A-101",
				Status: "postponed",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_NewSchedule_Validate_defaultsStatus(t *testing.T) {
	validate := newValidator(t)

	data := schedule.NewSchedule{
		Subject: "Algorithms", Date: "2025-03-10",
		StartTime: "09:00", EndTime: "10:30", Room: "A-101",
	}
	require.NoError(t, data.Validate(validate))
	assert.Equal(t, schedule.StatusActive, data.Status)
}

func Test_UpdateSchedule_Validate_timeOrderAgainstStored(t *testing.T) {
	validate := newValidator(t)

	orig := schedule.Schedule{
		StartTime: core.ClockTime{Hour: 9, Minute: 0},
		EndTime:   core.ClockTime{Hour: 10, Minute: 30},
	}

	// moving only the end before the stored start must fail
	bad := schedule.UpdateSchedule{EndTime: "08:00"}
	assert.Error(t, bad.Validate(orig, validate))

	// moving only the start while staying before the stored end is fine
	ok := schedule.UpdateSchedule{StartTime: "10:00"}
	assert.NoError(t, ok.Validate(orig, validate))
}
