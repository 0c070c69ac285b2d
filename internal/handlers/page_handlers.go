// File: internal/handlers/page_handlers.go
package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/iyunix/go-wellness/internal/middleware"
	"github.com/iyunix/go-wellness/web"
)

var pageNames = []string{"index.html", "login.html", "signup.html", "error.html"}

// pageData is what every template sees. The layout reads Username, Error and
// Notice; pages read the rest.
type pageData struct {
	Username    string
	Error       string
	Notice      string
	Form        map[string]string
	Code        int
	Message     string
	Description string
}

// PageHandler renders the embedded templates. Each page is its own template
// set layered over layout.html.
type PageHandler struct {
	templates map[string]*template.Template
	logger    Logger
}

func NewPageHandler(logger Logger) (*PageHandler, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		ts, err := template.New(name).ParseFS(web.Templates, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = ts
	}
	return &PageHandler{templates: templates, logger: logger}, nil
}

func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", pageData{})
}

// ShowErrorPage doubles as the router's NotFound handler.
func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, r *http.Request, code int) {
	data := pageData{Code: code, Message: http.StatusText(code)}
	switch code {
	case http.StatusNotFound:
		data.Description = "We couldn't find that page."
	case http.StatusMethodNotAllowed:
		data.Description = "That method is not allowed for this resource."
	default:
		data.Description = "Something went wrong on our side. Please try again."
	}
	h.render(w, r, code, "error.html", data)
}

func (h *PageHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ShowErrorPage(w, r, http.StatusNotFound)
	})
}

// render executes into a buffer first so a template failure never leaves a
// half-written page behind.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	addSecurityHeaders(w)

	if data.Username == "" {
		data.Username = middleware.CallerFrom(r.Context()).Username
	}

	ts, ok := h.templates[name]
	if !ok {
		h.logger.Error("template not found", "template", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
