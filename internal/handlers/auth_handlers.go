// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-wellness/internal/dtos"
	"github.com/iyunix/go-wellness/internal/middleware"
	"github.com/iyunix/go-wellness/internal/services/chat"
	"github.com/iyunix/go-wellness/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	auth          *user_services.AuthService
	chat          chat.Service
	pages         *PageHandler
	tokenTTL      time.Duration
	secureCookies bool
	logger        Logger
}

func NewAuthHandler(auth *user_services.AuthService, chatService chat.Service, pages *PageHandler, tokenTTL time.Duration, secureCookies bool, logger Logger) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		chat:          chatService,
		pages:         pages,
		tokenTTL:      tokenTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// readCredentials accepts either a JSON body or a classic form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (dtos.CredentialsDTO, error) {
	var c dtos.CredentialsDTO
	if wantsJSON(r) {
		if err := decodeJSON(w, r, &c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c = dtos.CredentialsDTO{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}
	}
	c.Username = strings.TrimSpace(c.Username)
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}

func (h *AuthHandler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.CallerFrom(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := pageData{}
	if r.URL.Query().Get("registered") == "1" {
		data.Notice = "Registration successful! Please log in."
	}
	h.pages.render(w, r, http.StatusOK, "login.html", data)
}

func (h *AuthHandler) ShowSignupPage(w http.ResponseWriter, r *http.Request) {
	if middleware.CallerFrom(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.render(w, r, http.StatusOK, "signup.html", pageData{})
}

// Login validates credentials and sets the auth cookie. Form posts are
// redirected home, JSON callers get {"status":"success"}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(w, r)
	if err != nil {
		h.loginFailed(w, r, c, "Invalid request body", http.StatusBadRequest)
		return
	}
	if c.Username == "" || c.Password == "" {
		h.loginFailed(w, r, c, "Username and password are required.", http.StatusBadRequest)
		return
	}

	_, token, err := h.auth.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCredentials) {
			h.loginFailed(w, r, c, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "error", err)
		h.loginFailed(w, r, c, "Something went wrong, please try again", http.StatusInternalServerError)
		return
	}

	middleware.SetAuthCookie(w, token, h.tokenTTL, h.secureCookies)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, dtos.Success(""))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, c dtos.CredentialsDTO, msg string, status int) {
	if wantsJSON(r) {
		writeError(w, msg, status)
		return
	}
	h.pages.render(w, r, status, "login.html", pageData{
		Error: msg,
		Form:  map[string]string{"username": c.Username},
	})
}

// Signup creates the account. Form posts land on /login, JSON callers get
// 201 {"status":"success"}.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(w, r)
	if err != nil {
		h.signupFailed(w, r, c, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.auth.Signup(r.Context(), c.Username, c.Email, c.Password); err != nil {
		var v *user_services.ValidationError
		switch {
		case errors.Is(err, user_services.ErrUsernameTaken):
			h.signupFailed(w, r, c, "Username already exists", http.StatusConflict)
		case errors.As(err, &v):
			h.signupFailed(w, r, c, v.Message, http.StatusBadRequest)
		default:
			h.logger.Error("signup failed", "error", err)
			h.signupFailed(w, r, c, "Something went wrong, please try again", http.StatusInternalServerError)
		}
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, dtos.Success(""))
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *AuthHandler) signupFailed(w http.ResponseWriter, r *http.Request, c dtos.CredentialsDTO, msg string, status int) {
	if wantsJSON(r) {
		writeError(w, msg, status)
		return
	}
	h.pages.render(w, r, status, "signup.html", pageData{
		Error: msg,
		Form:  map[string]string{"username": c.Username, "email": c.Email},
	})
}

// Logout clears the auth cookie and throws away the guest conversation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if caller.GuestSessionID != "" {
		guest := caller
		guest.UserID, guest.Username = 0, ""
		if err := h.chat.EndSession(r.Context(), guest); err != nil {
			h.logger.Warn("could not end guest session", "error", err)
		}
	}

	middleware.ClearAuthCookie(w, h.secureCookies)
	middleware.EndGuestSession(w, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
