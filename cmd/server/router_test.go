package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-wellness/internal/config"
	"github.com/iyunix/go-wellness/internal/services"
	"github.com/iyunix/go-wellness/internal/services/chat"
	"github.com/iyunix/go-wellness/internal/services/safety"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:        "0",
		Environment:       "test",
		JWTSecretKey:      "router-test-secret",
		TokenTTL:          time.Hour,
		ChatModel:         "gpt-3.5-turbo",
		CompletionTimeout: time.Second,
		StorageBackend:    "document",
		DocumentStorePath: filepath.Join(t.TempDir(), "wellness.bolt"),
		UserHistoryLimit:  12,
		GuestHistoryLimit: 10,
		GuestSessionTTL:   time.Hour,
		MaxGuestSessions:  100,
		ChatRatePerSecond: 100,
		ChatRateBurst:     100,
		MetricsEnabled:    true,
	}
}

// newTestServer runs the full application with no API key, so chat answers
// come from the fallback path.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	app, err := NewApplication(context.Background(), testConfig(t), &services.NoOpLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func postJSON(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRouter_ProtectedRoutesRejectGuests(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/api/log_stress", `{"level":5,"source":"exam"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, client, srv.URL+"/api/stress_history")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, client, srv.URL+"/api/request_help", `{"message":"please call me"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_SignedInUserFlow(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/signup", `{"username":"maya","email":"maya@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, client, srv.URL+"/signup", `{"username":"maya","password":"correct-horse"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, client, srv.URL+"/login", `{"username":"maya","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, client, srv.URL+"/login", `{"username":"maya","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]string
	decode(t, resp, &status)
	assert.Equal(t, "success", status["status"])

	resp = postJSON(t, client, srv.URL+"/api/log_stress", `{"level":7,"source":"exam"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &status)
	assert.Equal(t, "success", status["status"])

	resp = postJSON(t, client, srv.URL+"/api/log_stress", `{"level":11}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, client, srv.URL+"/api/stress_history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []map[string]interface{}
	decode(t, resp, &history)
	require.Len(t, history, 1)
	assert.EqualValues(t, 7, history[0]["level"])
	assert.Equal(t, "exam", history[0]["source"])

	resp = postJSON(t, client, srv.URL+"/api/request_help", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, client, srv.URL+"/api/request_help", `{"severity":"high","message":"I need to talk to someone"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt map[string]interface{}
	decode(t, resp, &receipt)
	assert.Equal(t, "success", receipt["status"])
	assert.Equal(t, "Your request has been received.", receipt["message"])
	assert.Contains(t, receipt, "after_hours")
}

func TestRouter_GuestChat(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/api/chat", `{"message":"hello there"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply chat.Reply
	decode(t, resp, &reply)
	assert.Contains(t, reply.Response, "authentication error")
	assert.Equal(t, "neutral", string(reply.Sentiment))

	resp = postJSON(t, client, srv.URL+"/api/chat", `{"message":"I want to kill myself"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &reply)
	assert.Equal(t, safety.CrisisMessage, reply.Response)
	assert.Equal(t, "crisis", string(reply.Sentiment))
	assert.Equal(t, "trigger_helpline", string(reply.Action))

	for _, body := range []string{`{"message":""}`, `{}`, `{"message":"   "}`} {
		resp = postJSON(t, client, srv.URL+"/api/chat", body)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		decode(t, resp, &reply)
		assert.Equal(t, chat.EmptyMessagePrompt, reply.Response)
		assert.Equal(t, "neutral", string(reply.Sentiment))
		assert.Equal(t, "none", string(reply.Action))
	}

	// Neither fallback nor crisis exchanges are stored.
	resp = get(t, client, srv.URL+"/api/chat/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Turns []map[string]interface{} `json:"turns"`
	}
	decode(t, resp, &body)
	assert.Empty(t, body.Turns)
}

func TestRouter_PagesAndOperationalEndpoints(t *testing.T) {
	srv, client := newTestServer(t)

	resp := get(t, client, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, srv.URL+"/api/resources")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	decode(t, resp, &list)
	assert.Len(t, list, 4)

	resp = get(t, client, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Willow")

	resp = get(t, client, srv.URL+"/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, client, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exposition, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(exposition), "wellness_http_requests_total")
}

func TestRouter_FormSignupAndLogout(t *testing.T) {
	srv, client := newTestServer(t)

	resp, err := client.PostForm(srv.URL+"/signup", map[string][]string{
		"username": {"jun"},
		"password": {"long-enough-pw"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?registered=1", resp.Header.Get("Location"))

	resp, err = client.PostForm(srv.URL+"/login", map[string][]string{
		"username": {"jun"},
		"password": {"not-the-password"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.PostForm(srv.URL+"/login", map[string][]string{
		"username": {"jun"},
		"password": {"long-enough-pw"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = get(t, client, srv.URL+"/api/stress_history")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, srv.URL+"/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, srv.URL+"/api/stress_history")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
