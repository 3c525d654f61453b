package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/ats-engine/internal/export"
	"github.com/terra-clan/ats-engine/internal/models"
)

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	filters := models.CandidateFilters{
		JobID:  r.URL.Query().Get("jobId"),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	candidates, err := s.manager.ListCandidates(r.Context(), filters)
	if err != nil {
		respondServiceError(w, r, err, "list candidates")
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.manager.GetCandidate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get candidate")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCandidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := s.manager.UpdateCandidate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "update candidate")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteCandidate(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete candidate")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "candidate deleted",
	})
}

func (s *Server) handleExportCandidates(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "jobId is required")
		return
	}

	job, err := s.manager.GetJob(r.Context(), jobID)
	if err != nil {
		respondServiceError(w, r, err, "export candidates")
		return
	}

	criteria, _, err := s.manager.ResolveCriteria(r.Context(), job)
	if err != nil {
		respondServiceError(w, r, err, "export candidates")
		return
	}

	candidates, err := s.manager.ListCandidates(r.Context(), models.CandidateFilters{JobID: jobID})
	if err != nil {
		respondServiceError(w, r, err, "export candidates")
		return
	}

	report := &export.Report{
		Job:         job,
		Criteria:    criteria,
		Candidates:  candidates,
		GeneratedAt: time.Now().UTC(),
	}

	// Buffer so a failed render can still be reported as JSON
	var buf bytes.Buffer
	if err := export.WriteExcel(&buf, report); err != nil {
		respondServiceError(w, r, err, "export candidates")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
