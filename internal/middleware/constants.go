// File: internal/middleware/constants.go
package middleware

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// Context keys for middleware communication
type contextKey string

const (
	callerKey  contextKey = "caller"
	guestIDKey contextKey = "guest_session_id"
)

// Cookie names
const (
	AuthCookie  = "auth_token"
	GuestCookie = "guest_session"
)

// CallerFrom returns the identity resolved for the request. Requests that
// skipped the identity middleware get a zero Caller.
func CallerFrom(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(callerKey).(domain.Caller)
	return caller
}

func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// Logger is the structured logger the middleware writes to.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
