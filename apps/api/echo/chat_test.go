package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatService stands in for the assistant backend.
func fakeChatService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Message string `json:"message"`
			UserID  string `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response":           "You asked: " + in.Message,
			"context_items_used": 2,
			"ai_powered":         true,
		})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func Test_chatApi_chat(t *testing.T) {
	backend := fakeChatService(t)
	conf := testConfig()
	conf.Chat.ServiceURL = backend.URL
	app := setup(t, conf)

	req, rec := newRequest(http.MethodPost, "/v1/chat", []byte(`{"message": "When is my next class?"}`))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Response  string `json:"response"`
			AIPowered bool   `json:"ai_powered"`
		} `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "You asked: When is my next class?", resp.Data.Response)
	assert.True(t, resp.Data.AIPowered)

	// empty message
	req, rec = newRequest(http.MethodPost, "/v1/chat", []byte(`{"message": "   "}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_chatApi_chat_backendDown(t *testing.T) {
	backend := fakeChatService(t)
	conf := testConfig()
	conf.Chat.ServiceURL = backend.URL
	app := setup(t, conf)
	backend.Close()

	req, rec := newRequest(http.MethodPost, "/v1/chat", []byte(`{"message": "any tasks due soon?"}`))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Error    string `json:"error"`
		Fallback string `json:"fallback_response"`
	}
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "temporarily unavailable")
	assert.True(t, strings.Contains(resp.Fallback, "task"))
}

func Test_chatApi_health(t *testing.T) {
	backend := fakeChatService(t)
	conf := testConfig()
	conf.Chat.ServiceURL = backend.URL
	app := setup(t, conf)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"chat_service_status"`
		} `json:"data"`
	}

	req, rec := newRequest(http.MethodGet, "/v1/chat/health")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data.Status)

	backend.Close()
	req, rec = newRequest(http.MethodGet, "/v1/chat/health")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "unavailable", resp.Data.Status)
}
