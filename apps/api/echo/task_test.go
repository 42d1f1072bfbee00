package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/task"
)

func createTask(t *testing.T, app testApp, title string, due time.Time, status task.Status) task.Task {
	t.Helper()
	created, err := app.taskSvc.Create(context.Background(), task.NewTask{
		Title:   title,
		Type:    task.TypeAssignment,
		Class:   "CS101",
		DueDate: due,
		Status:  status,
	}, time.Now().UTC())
	require.NoError(t, err)
	return created
}

func Test_taskApi_create(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name:   "valid",
			method: http.MethodPost,
			path:   "/v1/tasks",
			body: []byte(`{"title": "Essay", "type": "assignment", "class": "CS101",
				"due_date": "2099-03-10T09:00:00Z"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing due date",
			method:   http.MethodPost,
			path:     "/v1/tasks",
			body:     []byte(`{"title": "Essay", "type": "assignment", "class": "CS101"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "unknown type",
			method: http.MethodPost,
			path:   "/v1/tasks",
			body: []byte(`{"title": "Essay", "type": "chore", "class": "CS101",
				"due_date": "2099-03-10T09:00:00Z"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_taskApi_effectiveStatus(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	overdue := createTask(t, app, "Past due", now.Add(-time.Hour), task.StatusPending)

	// stored as overdue on write, rendered as overdue on read
	req, rec := newRequest(http.MethodGet, "/v1/tasks/"+overdue.ID)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data task.Rendered `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, task.StatusOverdue, resp.Data.EffectiveStatus)
}

func Test_taskApi_updateStatus(t *testing.T) {
	app := setup(t)

	created := createTask(t, app, "Essay", time.Now().UTC().Add(time.Hour), task.StatusPending)

	req, rec := newRequest(http.MethodPatch, "/v1/tasks/"+created.ID+"/status", []byte(`{"status": "completed"}`))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data task.Rendered `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, task.StatusCompleted, resp.Data.Status)
	assert.False(t, resp.Data.CompletedAt.IsZero())

	// overdue cannot be set by hand
	req, rec = newRequest(http.MethodPatch, "/v1/tasks/"+created.ID+"/status", []byte(`{"status": "overdue"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// empty body
	req, rec = newRequest(http.MethodPatch, "/v1/tasks/"+created.ID+"/status", []byte(`{}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_taskApi_byStatus(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	overdue := createTask(t, app, "Past due", now.Add(-time.Hour), task.StatusPending)
	createTask(t, app, "Future", now.Add(time.Hour), task.StatusPending)
	createTask(t, app, "Done", now.Add(-time.Hour), task.StatusCompleted)

	req, rec := newRequest(http.MethodGet, "/v1/tasks/status/overdue")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Count int             `json:"count"`
		Data  []task.Rendered `json:"data"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, overdue.ID, resp.Data[0].ID)

	// unknown status value
	req, rec = newRequest(http.MethodGet, "/v1/tasks/status/bogus")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_taskApi_stats(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	createTask(t, app, "Pending", now.Add(48*time.Hour), task.StatusPending)
	createTask(t, app, "Overdue", now.Add(-time.Hour), task.StatusPending)
	createTask(t, app, "Done", now.Add(time.Hour), task.StatusCompleted)

	req, rec := newRequest(http.MethodGet, "/v1/tasks/stats/overview")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data task.Stats `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Overdue)
	assert.Equal(t, 1, resp.Data.StatusBreakdown[task.StatusCompleted])
}

func Test_taskApi_range(t *testing.T) {
	app := setup(t)

	loc := time.UTC
	createTask(t, app, "Before", time.Date(2025, 3, 9, 23, 0, 0, 0, loc), task.StatusPending)
	inRange := createTask(t, app, "In range", time.Date(2025, 3, 12, 9, 0, 0, 0, loc), task.StatusPending)
	createTask(t, app, "After", time.Date(2025, 3, 17, 0, 0, 0, 0, loc), task.StatusPending)

	req, rec := newRequest(http.MethodGet, "/v1/tasks/range/2025-03-10/2025-03-16")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Count      int             `json:"count"`
		Total      int             `json:"total"`
		Pagination *core.PageInfo  `json:"pagination"`
		Data       []task.Rendered `json:"data"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Total)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.Pages)
	assert.Equal(t, inRange.ID, resp.Data[0].ID)
}
