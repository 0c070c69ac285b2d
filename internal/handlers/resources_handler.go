// File: internal/handlers/resources_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-wellness/internal/services/resources"
)

// GetResources answers GET /api/resources.
func GetResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resources.List())
}
