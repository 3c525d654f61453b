package models

import (
	"strings"
	"time"
)

// MaxHighlights is the number of highlights kept per candidate
const MaxHighlights = 5

// Candidate represents a resume scored against a job's criteria
type Candidate struct {
	ID          string             `json:"id"`
	JobID       string             `json:"jobId"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone,omitempty"`
	Score       float64            `json:"score"`
	Scores      map[string]float64 `json:"scores"`
	Summary     string             `json:"summary"`
	Highlights  []string           `json:"highlights"`
	CVURL       string             `json:"cvUrl,omitempty"`
	LinkedInURL string             `json:"linkedinUrl,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CandidateInfo is the contact identity extracted from a resume
type CandidateInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TrimHighlights caps highlights at MaxHighlights and drops blank entries
func TrimHighlights(highlights []string) []string {
	out := make([]string, 0, MaxHighlights)
	for _, h := range highlights {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		out = append(out, h)
		if len(out) == MaxHighlights {
			break
		}
	}
	return out
}

// CandidateFilters contains filters for listing candidates
type CandidateFilters struct {
	JobID  string
	Limit  int
	Offset int
}

// AnalyzeRequest runs the scoring pipeline on resume text
type AnalyzeRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
	JobID      string `json:"jobId" validate:"required"`
}

// UpdateCandidateRequest is a partial candidate update.
// Nil fields are left untouched.
type UpdateCandidateRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Email       *string   `json:"email" validate:"omitempty,email"`
	Phone       *string   `json:"phone" validate:"omitempty,max=64"`
	Score       *float64  `json:"score" validate:"omitempty,min=0,max=10"`
	Summary     *string   `json:"summary"`
	Highlights  *[]string `json:"highlights"`
	CVURL       *string   `json:"cvUrl" validate:"omitempty,url"`
	LinkedInURL *string   `json:"linkedinUrl" validate:"omitempty,url"`
}
