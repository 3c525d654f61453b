package models

import "time"

// DefaultPostedDate is shown for jobs created without an explicit posted date
const DefaultPostedDate = "Just now"

// Job represents a hiring requisition
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	CandidateCount int       `json:"candidateCount"`
	PostedDate     string    `json:"postedDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateJobRequest represents a request to create a job
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
	PostedDate  string `json:"postedDate" validate:"max=64"`
}

// UpdateJobRequest represents a partial job update.
// Nil fields are left untouched.
type UpdateJobRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=20000"`
	PostedDate  *string `json:"postedDate" validate:"omitempty,max=64"`
}
