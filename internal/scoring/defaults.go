package scoring

import "github.com/terra-clan/ats-engine/internal/models"

// DefaultCriteria returns the criteria used for jobs without a stored set.
// A fresh slice is returned on every call.
func DefaultCriteria() []models.Criterion {
	return []models.Criterion{
		{ID: "technical-skills", Name: "Technical Skills Match", Weight: 30},
		{ID: "experience", Name: "Years of Experience", Weight: 25},
		{ID: "education", Name: "Education Background", Weight: 15},
		{ID: "projects", Name: "Project Relevance", Weight: 20},
		{ID: "communication", Name: "Communication Skills", Weight: 10},
	}
}
