package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
	"github.com/ikedalab/classinfo/core/schedule"
	"github.com/ikedalab/classinfo/core/subscriber"
	"github.com/ikedalab/classinfo/core/task"
	chatbotsvc "github.com/ikedalab/classinfo/services/chatbot"
	inmemdb "github.com/ikedalab/classinfo/storage/database/inmem"
)

type testApp struct {
	server          Server
	conf            *core.Config
	scheduleSvc     *schedule.Service
	taskSvc         *task.Service
	announcementSvc *announcement.Service
	subscriberSvc   *subscriber.Service
}

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "ClassInfo",
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: mail.Address{Name: "ClassInfo", Address: "noreply@localhost"},
		Timezone:         time.UTC,
		Chat: core.ChatConfig{
			ServiceURL: "http://localhost:5002",
			Timeout:    time.Second,
		},
	}
}

func setup(t *testing.T, confs ...*core.Config) testApp {
	t.Helper()

	conf := testConfig()
	if len(confs) > 0 {
		conf = confs[0]
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	scheduleSvc := schedule.NewService(inmemdb.NewScheduleRepository(db))
	taskSvc := task.NewService(inmemdb.NewTaskRepository(db))
	subscriberSvc := subscriber.NewService(inmemdb.NewSubscriberRepository(db))
	announcementSvc := announcement.NewService(inmemdb.NewAnnouncementRepository(db), nil)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          testLogger{},
		ScheduleSvc:     scheduleSvc,
		TaskSvc:         taskSvc,
		AnnouncementSvc: announcementSvc,
		SubscriberSvc:   subscriberSvc,
		ChatClient:      chatbotsvc.NewClient(conf, testLogger{}),
		Validate:        validate,
		Translator:      translator,
	})

	return testApp{
		server:          server,
		conf:            conf,
		scheduleSvc:     scheduleSvc,
		taskSvc:         taskSvc,
		announcementSvc: announcementSvc,
		subscriberSvc:   subscriberSvc,
	}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// decodeBody unmarshals the recorded response body into `into`.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.String())
	}
}
