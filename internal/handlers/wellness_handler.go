// File: internal/handlers/wellness_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/dtos"
	"github.com/iyunix/go-wellness/internal/middleware"
	"github.com/iyunix/go-wellness/internal/services/wellness"
)

// WellnessHandler serves stress logging and help requests. Every route sits
// behind middleware.RequireUser.
type WellnessHandler struct {
	wellness *wellness.Service
	logger   Logger
}

func NewWellnessHandler(service *wellness.Service, logger Logger) *WellnessHandler {
	return &WellnessHandler{wellness: service, logger: logger}
}

func (h *WellnessHandler) LogStress(w http.ResponseWriter, r *http.Request) {
	var req dtos.StressLogRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Level == nil {
		writeError(w, "level is required", http.StatusBadRequest)
		return
	}

	caller := middleware.CallerFrom(r.Context())
	if err := h.wellness.LogStress(r.Context(), caller.UserID, *req.Level, req.Source); err != nil {
		h.fail(w, "log stress", caller, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.Success("Stress level logged"))
}

func (h *WellnessHandler) StressHistory(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	entries, err := h.wellness.StressHistory(r.Context(), caller.UserID)
	if err != nil {
		h.fail(w, "stress history", caller, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WellnessHandler) RequestHelp(w http.ResponseWriter, r *http.Request) {
	var req dtos.HelpRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	caller := middleware.CallerFrom(r.Context())
	receipt, err := h.wellness.RequestHelp(r.Context(), caller.UserID, domain.Severity(req.Severity), req.Message)
	if err != nil {
		h.fail(w, "request help", caller, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.HelpRequestResponse{
		Status:     "success",
		Message:    "Your request has been received.",
		AfterHours: receipt.AfterHours,
	})
}

func (h *WellnessHandler) fail(w http.ResponseWriter, op string, caller domain.Caller, err error) {
	var v *wellness.ValidationError
	if errors.As(err, &v) {
		writeError(w, v.Message, http.StatusBadRequest)
		return
	}
	h.logger.Error(op+" failed", "user_id", caller.UserID, "error", err)
	writeError(w, "Something went wrong, please try again", http.StatusInternalServerError)
}
