package subscriber_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/subscriber"
	inmemdb "github.com/ikedalab/classinfo/storage/database/inmem"
)

func setup(t *testing.T) (*subscriber.Service, *validator.Validate) {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	return subscriber.NewService(inmemdb.NewSubscriberRepository(db)), validate
}

func create(t *testing.T, svc *subscriber.Service, validate *validator.Validate, email string, prefs *subscriber.Preferences) subscriber.Subscriber {
	t.Helper()
	data := subscriber.NewSubscriber{
		Email: email,
		Name:  "Amina Njoroge",
		Prefs: prefs,
	}
	require.NoError(t, data.Validate(validate, svc))
	sub, err := svc.Create(context.Background(), data)
	require.NoError(t, err)
	return sub
}

func Test_NewSubscriber_Validate(t *testing.T) {
	svc, validate := setup(t)

	t.Run("bad email", func(t *testing.T) {
		data := subscriber.NewSubscriber{Email: "not-an-email", Name: "A"}
		assert.Error(t, data.Validate(validate, svc))
	})

	t.Run("duplicate email", func(t *testing.T) {
		create(t, svc, validate, "amina@school.edu", nil)
		data := subscriber.NewSubscriber{Email: "Amina@School.edu", Name: "A"}
		err := data.Validate(validate, svc)
		require.Error(t, err)

		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func Test_Service_Create_defaultsPreferences(t *testing.T) {
	svc, validate := setup(t)

	sub := create(t, svc, validate, "amina@school.edu", nil)
	assert.Equal(t, subscriber.DefaultPreferences(), sub.Preferences)
	assert.True(t, sub.IsActive)
}

func Test_Service_Recipients(t *testing.T) {
	svc, validate := setup(t)
	ctx := context.Background()

	all := create(t, svc, validate, "all@school.edu", nil)

	noAnnouncements := subscriber.DefaultPreferences()
	noAnnouncements.Announcements = false
	create(t, svc, validate, "noann@school.edu", &noAnnouncements)

	muted := subscriber.DefaultPreferences()
	muted.EmailNotifications = false
	create(t, svc, validate, "muted@school.edu", &muted)

	inactive := create(t, svc, validate, "gone@school.edu", nil)
	require.NoError(t, svc.Unsubscribe(ctx, inactive.Email))

	recipients, err := svc.Recipients(ctx, subscriber.KindAnnouncements)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, all.ID, recipients[0].ID)

	// the announcements opt-out still gets schedule updates
	recipients, err = svc.Recipients(ctx, subscriber.KindScheduleUpdates)
	require.NoError(t, err)
	assert.Len(t, recipients, 2)
}

func Test_Service_Unsubscribe(t *testing.T) {
	svc, validate := setup(t)
	ctx := context.Background()

	sub := create(t, svc, validate, "amina@school.edu", nil)
	require.NoError(t, svc.Unsubscribe(ctx, sub.Email))

	got, err := svc.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	err = svc.Unsubscribe(ctx, "unknown@school.edu")
	assert.Equal(t, subscriber.ErrNotFound, err)
}

func Test_Service_Update_preferences(t *testing.T) {
	svc, validate := setup(t)
	ctx := context.Background()

	sub := create(t, svc, validate, "amina@school.edu", nil)

	prefs := subscriber.DefaultPreferences()
	prefs.TaskReminders = false
	updated, err := svc.Update(ctx, sub.ID, subscriber.UpdateSubscriber{Prefs: &prefs})
	require.NoError(t, err)
	assert.False(t, updated.Preferences.TaskReminders)
	assert.True(t, updated.Preferences.Announcements)
	assert.Equal(t, sub.Name, updated.Name)
}
