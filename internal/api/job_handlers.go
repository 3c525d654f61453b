package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/ats-engine/internal/models"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.manager.ListJobs(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "list jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := s.manager.CreateJob(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "create job")
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.manager.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := s.manager.UpdateJob(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "update job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "job deleted",
	})
}

// Criteria handlers

func (s *Server) handleGetCriteria(w http.ResponseWriter, r *http.Request) {
	cs, err := s.manager.GetCriteria(r.Context(), r.URL.Query().Get("jobId"))
	if err != nil {
		respondServiceError(w, r, err, "get criteria")
		return
	}

	respondJSON(w, http.StatusOK, cs)
}

func (s *Server) handleUpsertCriteria(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertCriteriaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cs, err := s.manager.UpsertCriteria(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "save criteria")
		return
	}

	respondJSON(w, http.StatusOK, cs)
}
