package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// respondSuccess writes the shared envelope with success set.
func respondSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, models.APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// respondError maps a service failure to its status code and message.
// Anything that is not an AppError becomes an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Code, models.APIResponse{
			Success: false,
			Error:   appErr.Message,
		})
		return
	}

	logger.Log.Errorw("internal server error", "err", err)
	writeJSON(w, http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Error:   "Internal server error",
	})
}

// provenanceFromRequest captures request origin for audit entries.
func provenanceFromRequest(r *http.Request) *models.Provenance {
	prov := &models.Provenance{}
	if r.RemoteAddr != "" {
		addr := r.RemoteAddr
		prov.IPAddress = &addr
	}
	if ua := r.UserAgent(); ua != "" {
		prov.UserAgent = &ua
	}
	return prov
}
