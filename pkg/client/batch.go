package client

import (
	"context"

	"github.com/terra-clan/ats-engine/internal/models"
)

// FileResult is the outcome of uploading one file of a batch
type FileResult struct {
	Path      string
	Candidate *models.Candidate
	Err       error
}

// BatchReport summarizes a batch upload
type BatchReport struct {
	Succeeded int
	Results   []FileResult
}

// Failed returns the results that carry an error
func (r *BatchReport) Failed() []FileResult {
	var failed []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// ProgressFunc is called after each file of a batch with the number of
// files processed so far
type ProgressFunc func(done, total int, result FileResult)

// UploadResumes uploads files one at a time in the given order. A failed
// file is recorded in the report and the batch moves on. If ctx is
// cancelled the remaining files are reported with ctx's error.
func (c *Client) UploadResumes(ctx context.Context, jobID string, paths []string, onProgress ProgressFunc) *BatchReport {
	report := &BatchReport{Results: make([]FileResult, 0, len(paths))}

	for i, path := range paths {
		result := FileResult{Path: path}

		if err := ctx.Err(); err != nil {
			result.Err = err
		} else {
			result.Candidate, result.Err = c.UploadResumeFile(ctx, jobID, path)
		}

		if result.Err == nil {
			report.Succeeded++
		}
		report.Results = append(report.Results, result)

		if onProgress != nil {
			onProgress(i+1, len(paths), result)
		}
	}

	return report
}
