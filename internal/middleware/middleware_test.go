package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/ratelimit"
	"github.com/iyunix/go-wellness/internal/services"
)

type fakeResolver struct {
	tokens map[string]uint
	users  map[uint]string
}

func (f fakeResolver) ValidateToken(token string) (uint, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func (f fakeResolver) Identify(_ context.Context, userID uint) (domain.Caller, error) {
	name, ok := f.users[userID]
	if !ok {
		return domain.Caller{}, errors.New("user not found")
	}
	return domain.Caller{UserID: userID, Username: name}, nil
}

func captureCaller(dst *domain.Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = CallerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGuestSession(t *testing.T) {
	var caller domain.Caller
	chain := GuestSession(false)(Identity(fakeResolver{}, &services.NoOpLogger{}, false)(captureCaller(&caller)))

	t.Run("issues a cookie on first visit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		c := cookieNamed(rec, GuestCookie)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, c.Value, caller.GuestSessionID)
		_, err := uuid.Parse(c.Value)
		assert.NoError(t, err)
	})

	t.Run("keeps an existing id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: GuestCookie, Value: id})
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		assert.Nil(t, cookieNamed(rec, GuestCookie))
		assert.Equal(t, id, caller.GuestSessionID)
	})

	t.Run("replaces a forged id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: GuestCookie, Value: "../../etc/passwd"})
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		require.NotNil(t, cookieNamed(rec, GuestCookie))
		assert.NotEqual(t, "../../etc/passwd", caller.GuestSessionID)
	})
}

func TestIdentity(t *testing.T) {
	resolver := fakeResolver{
		tokens: map[string]uint{"good": 7, "orphan": 99},
		users:  map[uint]string{7: "maya"},
	}
	var caller domain.Caller
	chain := Identity(resolver, &services.NoOpLogger{}, false)(captureCaller(&caller))

	tests := []struct {
		name        string
		token       string
		wantUser    uint
		wantCleared bool
	}{
		{"no cookie", "", 0, false},
		{"valid token", "good", 7, false},
		{"bad token", "forged", 0, true},
		{"deleted user", "orphan", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: AuthCookie, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantUser, caller.UserID)
			cleared := cookieNamed(rec, AuthCookie)
			assert.Equal(t, tt.wantCleared, cleared != nil)
		})
	}
}

func TestRequireUser(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireUser(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log_stress", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/api/log_stress", nil)
	req = req.WithContext(WithCaller(req.Context(), domain.Caller{UserID: 1}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type countingRecorder struct {
	limited  map[string]int
	observed []string
}

func (c *countingRecorder) IncRateLimited(limiter string) {
	if c.limited == nil {
		c.limited = map[string]int{}
	}
	c.limited[limiter]++
}

func (c *countingRecorder) ObserveHTTP(method, route string, status int, _ time.Duration) {
	c.observed = append(c.observed, method+" "+route+" "+http.StatusText(status))
}

func TestChatRateLimit(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(0.001, 2)
	t.Cleanup(limiter.Close)
	rec := &countingRecorder{}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := ChatRateLimit(limiter, &services.NoOpLogger{}, rec)(ok)

	send := func(caller domain.Caller) int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req = req.WithContext(WithCaller(req.Context(), caller))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	guest := domain.Caller{GuestSessionID: "g-1"}
	assert.Equal(t, http.StatusOK, send(guest))
	assert.Equal(t, http.StatusOK, send(guest))
	assert.Equal(t, http.StatusTooManyRequests, send(guest))

	// Buckets are per caller.
	assert.Equal(t, http.StatusOK, send(domain.Caller{GuestSessionID: "g-2"}))
	assert.Equal(t, http.StatusOK, send(domain.Caller{UserID: 5, GuestSessionID: "g-1"}))
	assert.Equal(t, 1, rec.limited["chat"])
}

func TestLoginRateLimit(t *testing.T) {
	limiter := ratelimit.NewAttemptLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   2,
		CleanupPeriod: time.Minute,
		BanDuration:   time.Minute,
	})
	t.Cleanup(limiter.Close)

	status := http.StatusUnauthorized
	h := LoginRateLimit(limiter, &services.NoOpLogger{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a&password=b"))
		req.RemoteAddr = ip + ":4242"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, post("10.0.0.1").Code)
	assert.Equal(t, http.StatusUnauthorized, post("10.0.0.1").Code)
	blocked := post("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	// Another client is unaffected, and a success clears its record.
	status = http.StatusSeeOther
	assert.Equal(t, http.StatusSeeOther, post("10.0.0.2").Code)

	// GET never counts.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "10.0.0.1:4242"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestLoggingMiddleware_RecordsRouteTemplate(t *testing.T) {
	rec := &countingRecorder{}
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(&services.NoOpLogger{}, rec))
	r.HandleFunc("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/42", nil))
	require.Len(t, rec.observed, 1)
	assert.Equal(t, "GET /api/items/{id} I'm a teapot", rec.observed[0])
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(&services.NoOpLogger{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	CORS("https://campus.example")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://campus.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	CORS("")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
