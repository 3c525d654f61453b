// Package seed loads sample jobs, criteria and candidates from YAML fixtures.
package seed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/ats-engine/internal/models"
)

// Fixtures is the content of all seed files in a directory
type Fixtures struct {
	Jobs []JobFixture
}

// JobFixture is one job with its optional criteria and candidates
type JobFixture struct {
	Title          string             `yaml:"title"`
	Description    string             `yaml:"description"`
	PostedDate     string             `yaml:"posted_date"`
	JobDescription string             `yaml:"job_description"`
	Criteria       []models.Criterion `yaml:"criteria"`
	Candidates     []CandidateFixture `yaml:"candidates"`
}

// CandidateFixture is a pre-scored candidate. When Score is omitted it is
// computed from Scores and the job's criteria.
type CandidateFixture struct {
	Name        string             `yaml:"name"`
	Email       string             `yaml:"email"`
	Phone       string             `yaml:"phone"`
	Score       *float64           `yaml:"score"`
	Scores      map[string]float64 `yaml:"scores"`
	Summary     string             `yaml:"summary"`
	Highlights  []string           `yaml:"highlights"`
	CVURL       string             `yaml:"cv_url"`
	LinkedInURL string             `yaml:"linkedin_url"`
}

// seedFile represents the YAML structure of a seed file
type seedFile struct {
	Jobs []JobFixture `yaml:"jobs"`
}

// LoadFromDir loads every *.yaml and *.yml file in dir, in file name order
func LoadFromDir(dir string) (*Fixtures, error) {
	slog.Info("loading seed fixtures from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list seed files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no seed files found in %s", dir)
	}

	fixtures := &Fixtures{}
	for _, file := range files {
		jobs, err := LoadFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		fixtures.Jobs = append(fixtures.Jobs, jobs...)
	}

	slog.Info("seed fixtures loaded", "files", len(files), "jobs", len(fixtures.Jobs))
	return fixtures, nil
}

// LoadFromFile loads the jobs of a single seed file
func LoadFromFile(path string) ([]JobFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]JobFixture, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, job := range sf.Jobs {
		if strings.TrimSpace(job.Title) == "" {
			return nil, fmt.Errorf("job %d: title is required", i+1)
		}
		names := make(map[string]bool, len(job.Criteria))
		for j, c := range job.Criteria {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return nil, fmt.Errorf("job %q criterion %d: name is required", job.Title, j+1)
			}
			key := strings.ToLower(name)
			if names[key] {
				return nil, fmt.Errorf("job %q: duplicate criterion name %s", job.Title, name)
			}
			names[key] = true
			if c.Weight < 0 || c.Weight > 100 {
				return nil, fmt.Errorf("job %q criterion %q: weight must be between 0 and 100", job.Title, c.Name)
			}
		}
		seen := make(map[string]bool, len(job.Candidates))
		for j, c := range job.Candidates {
			email := models.NormalizeEmail(c.Email)
			if email == "" {
				return nil, fmt.Errorf("job %q candidate %d: email is required", job.Title, j+1)
			}
			if seen[email] {
				return nil, fmt.Errorf("job %q: duplicate candidate email %s", job.Title, email)
			}
			seen[email] = true
		}
	}

	return sf.Jobs, nil
}
