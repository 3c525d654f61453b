package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/terra-clan/ats-engine/internal/models"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	candidate, err := s.builder.Process(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "analyze resume")
		return
	}

	respondJSON(w, http.StatusOK, candidate)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid or missing file")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or missing file")
		return
	}
	defer file.Close()

	jobID := r.FormValue("jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "Missing jobId")
		return
	}

	slog.Info("extracting resume text", "job_id", jobID, "file", header.Filename, "size", header.Size)

	text, err := s.extractor.Extract(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, r, err, "extract resume text")
		return
	}

	candidate, err := s.builder.Process(r.Context(), models.AnalyzeRequest{ResumeText: text, JobID: jobID})
	if err != nil {
		respondServiceError(w, r, err, "analyze resume")
		return
	}

	respondJSON(w, http.StatusOK, candidate)
}
