// File: internal/domain/caller.go
package domain

// Caller is the resolved identity of the current request: either an
// authenticated user or an anonymous guest identified by a session id.
type Caller struct {
	UserID         uint
	Username       string
	GuestSessionID string
}

// Authenticated reports whether the caller is a signed-in user.
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

// DisplayName is the name the assistant uses for the caller.
func (c Caller) DisplayName() string {
	if c.Authenticated() && c.Username != "" {
		return c.Username
	}
	return "friend"
}
