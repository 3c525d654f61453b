package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/terra-clan/ats-engine/internal/ai"
	"github.com/terra-clan/ats-engine/internal/extract"
	"github.com/terra-clan/ats-engine/internal/hiring"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps a service error onto a status code. Errors with
// no mapping are logged and reported as "failed to <action>".
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var (
		validationErr *hiring.ValidationError
		duplicateErr  *hiring.DuplicateCandidateError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &duplicateErr):
		respondError(w, http.StatusBadRequest, duplicateErr.Error())
	case errors.Is(err, extract.ErrUnsupportedFileType),
		errors.Is(err, extract.ErrNoReadableText):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, hiring.ErrJobNotFound),
		errors.Is(err, hiring.ErrCandidateNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ai.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "AI service not configured")
	case errors.Is(err, ai.ErrServiceUnavailable),
		errors.Is(err, ai.ErrAuth),
		errors.Is(err, ai.ErrRateLimited),
		errors.Is(err, ai.ErrMalformedResponse),
		errors.Is(err, extract.ErrExtractionTimeout):
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error("failed to "+action, "error", err, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true
	for name, err := range s.checks.CheckAll(r.Context()) {
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		respondError(w, http.StatusServiceUnavailable, "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}
