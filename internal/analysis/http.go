package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HTTPService is a Service backed by the analysis platform's REST API.
type HTTPService struct {
	Client  *http.Client
	BaseURL string // required, e.g. "https://analysis.example.com"
}

func (s *HTTPService) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}

func (s *HTTPService) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

// Submit starts a new job. When the spec carries no name, a unique one is
// generated so concurrent submissions never collide.
func (s *HTTPService) Submit(ctx context.Context, spec JobSpec) (Job, error) {
	if strings.TrimSpace(spec.Name) == "" {
		spec.Name = "clarify-" + uuid.New().String()[:8]
	}
	logf(spec.Name, "submit analysis=%s dataset=%s model=%s", spec.Analysis, spec.DatasetURI, spec.ModelName)

	body, err := json.Marshal(spec)
	if err != nil {
		return Job{}, fmt.Errorf("encode job spec: %w", err)
	}

	url := s.baseURL() + "/jobs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Job{}, &APIError{StatusCode: resp.StatusCode}
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return Job{}, fmt.Errorf("decode submit response: %w", err)
	}
	if job.Name == "" {
		job.Name = spec.Name
	}
	return job, nil
}

// Status reports the job's current lifecycle state.
func (s *HTTPService) Status(ctx context.Context, name string) (JobStatus, error) {
	url := fmt.Sprintf("%s/jobs/%s", s.baseURL(), strings.TrimSpace(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return JobStatus{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return JobStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return JobStatus{}, &APIError{StatusCode: resp.StatusCode}
	}

	var st JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return JobStatus{}, fmt.Errorf("decode status response: %w", err)
	}
	logf(name, "status state=%s", st.State)
	return st, nil
}

// Result streams the completed job's explanation payload.
func (s *HTTPService) Result(ctx context.Context, name string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/jobs/%s/result", s.baseURL(), strings.TrimSpace(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode}
	}
	logf(name, "result content-length=%d", resp.ContentLength)
	return resp.Body, nil
}
