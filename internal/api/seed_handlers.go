package api

import (
	"net/http"

	"github.com/terra-clan/ats-engine/internal/seed"
)

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	fixtures, err := seed.LoadFromDir(s.seedDir)
	if err != nil {
		respondServiceError(w, r, err, "load seed fixtures")
		return
	}

	summary, err := seed.Apply(r.Context(), s.repo, fixtures)
	if err != nil {
		respondServiceError(w, r, err, "seed database")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Database seeded successfully with sample data",
		"jobs":       summary.Jobs,
		"candidates": summary.Candidates,
	})
}
