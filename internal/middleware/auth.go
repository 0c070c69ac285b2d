// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-wellness/internal/domain"
)

// IdentityResolver is the part of the auth service the middleware needs.
type IdentityResolver interface {
	ValidateToken(token string) (uint, error)
	Identify(ctx context.Context, userID uint) (domain.Caller, error)
}

// Identity resolves the auth_token cookie, if any, into the request Caller.
// Invalid tokens are cleared and the request continues as a guest.
func Identity(resolver IdentityResolver, logger Logger, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := domain.Caller{}
			if guestID, ok := r.Context().Value(guestIDKey).(string); ok {
				caller.GuestSessionID = guestID
			}

			if cookie, err := r.Cookie(AuthCookie); err == nil && cookie.Value != "" {
				userID, err := resolver.ValidateToken(cookie.Value)
				if err == nil {
					var user domain.Caller
					user, err = resolver.Identify(r.Context(), userID)
					if err == nil {
						caller.UserID = user.UserID
						caller.Username = user.Username
					}
				}
				if err != nil {
					logger.Debug("discarding auth cookie", "path", r.URL.Path, "error", err)
					ClearAuthCookie(w, secureCookies)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// RequireUser rejects guests: API paths get a 401 JSON body, pages are
// redirected to /login.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFrom(r.Context()).Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
