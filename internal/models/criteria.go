package models

import "time"

// Criterion is a single weighted evaluation dimension
type Criterion struct {
	ID     string `json:"id,omitempty" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Weight int    `json:"weight" yaml:"weight"`
}

// CriteriaSet is the ordered list of criteria attached to one job
type CriteriaSet struct {
	JobID          string      `json:"jobId"`
	JobDescription string      `json:"jobDescription"`
	Criteria       []Criterion `json:"criteria"`
	IsDefault      bool        `json:"isDefault,omitempty"`
	CreatedAt      time.Time   `json:"createdAt,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt,omitempty"`
}

// TotalWeight returns the sum of all criterion weights
func (cs *CriteriaSet) TotalWeight() int {
	total := 0
	for _, c := range cs.Criteria {
		total += c.Weight
	}
	return total
}

// UpsertCriteriaRequest creates or replaces the criteria set of a job
type UpsertCriteriaRequest struct {
	JobID          string             `json:"jobId" validate:"required"`
	JobDescription string             `json:"jobDescription" validate:"max=20000"`
	Criteria       []CriterionRequest `json:"criteria" validate:"required,min=1,max=50,dive"`
}

// CriterionRequest is one criterion inside an UpsertCriteriaRequest
type CriterionRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required,max=200"`
	Weight int    `json:"weight" validate:"min=0,max=100"`
}
