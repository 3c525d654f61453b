package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/ats-engine/internal/models"
)

// Client is a Go SDK for the ats-engine API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new ats-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Analysis calls wait on the AI service
			Timeout: 2 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failed API call
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Jobs

// ListJobs returns all jobs, newest first
func (c *Client) ListJobs(ctx context.Context) ([]*models.Job, error) {
	var jobs []*models.Job
	if err := c.call(ctx, http.MethodGet, "/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateJob creates a new job
func (c *Client) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.call(ctx, http.MethodPost, "/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob retrieves a job by ID
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.call(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob applies a partial update to a job
func (c *Client) UpdateJob(ctx context.Context, id string, req models.UpdateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.call(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id), req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes a job with its candidates and criteria
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id), nil, nil)
}

// Criteria

// GetCriteria returns a job's criteria set, or the default set
func (c *Client) GetCriteria(ctx context.Context, jobID string) (*models.CriteriaSet, error) {
	var cs models.CriteriaSet
	if err := c.call(ctx, http.MethodGet, "/criteria?jobId="+url.QueryEscape(jobID), nil, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// SaveCriteria creates or replaces a job's criteria set
func (c *Client) SaveCriteria(ctx context.Context, req models.UpsertCriteriaRequest) (*models.CriteriaSet, error) {
	var cs models.CriteriaSet
	if err := c.call(ctx, http.MethodPost, "/criteria", req, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// Candidates

// ListOptions contains options for listing candidates
type ListOptions struct {
	JobID  string
	Limit  int
	Offset int
}

// ListCandidates returns candidates ordered by score, highest first
func (c *Client) ListCandidates(ctx context.Context, opts ListOptions) ([]*models.Candidate, error) {
	q := url.Values{}
	if opts.JobID != "" {
		q.Set("jobId", opts.JobID)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/candidates"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var candidates []*models.Candidate
	if err := c.call(ctx, http.MethodGet, path, nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// GetCandidate retrieves a candidate by ID
func (c *Client) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.call(ctx, http.MethodGet, "/candidates/"+url.PathEscape(id), nil, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// UpdateCandidate applies a partial update to a candidate
func (c *Client) UpdateCandidate(ctx context.Context, id string, req models.UpdateCandidateRequest) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.call(ctx, http.MethodPut, "/candidates/"+url.PathEscape(id), req, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// DeleteCandidate removes a candidate
func (c *Client) DeleteCandidate(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/candidates/"+url.PathEscape(id), nil, nil)
}

// Analysis

// Analyze scores resume text against a job
func (c *Client) Analyze(ctx context.Context, jobID, resumeText string) (*models.Candidate, error) {
	req := models.AnalyzeRequest{ResumeText: resumeText, JobID: jobID}

	var candidate models.Candidate
	if err := c.call(ctx, http.MethodPost, "/analyze", req, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// UploadResume uploads a resume file and scores it against a job
func (c *Client) UploadResume(ctx context.Context, jobID, filename string, r io.Reader) (*models.Candidate, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.WriteField("jobId", jobID); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-resume", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var candidate models.Candidate
	if err := c.send(req, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// UploadResumeFile uploads the resume stored at path
func (c *Client) UploadResumeFile(ctx context.Context, jobID, path string) (*models.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return c.UploadResume(ctx, jobID, path, f)
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// call sends a JSON request and decodes the data of the response envelope into out
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !env.Success || resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}
