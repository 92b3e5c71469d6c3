package uniprot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/honeycarbs/idmapping/pkg/idlist"
	"github.com/honeycarbs/idmapping/pkg/logging"
	"github.com/honeycarbs/idmapping/pkg/wait"
)

const (
	defaultBaseURL      = "https://rest.uniprot.org"
	defaultPollInterval = 5 * time.Second
	errorBodyLimit      = 4096
)

var (
	// ErrMissingStatus is returned when a status response carries no jobStatus
	ErrMissingStatus = errors.New("uniprot: status response without jobStatus")
	// ErrMissingJobID is returned when a submission response carries no jobId
	ErrMissingJobID = errors.New("uniprot: submit response without jobId")
)

// NewClient instantiates a UniProt ID mapping client
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("uniprot: parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// status checks must see the 303 sent once a job finishes
	statusClient := *httpClient
	statusClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = wait.Sleep
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		statusClient: &statusClient,
		pollInterval: pollInterval,
		sleep:        sleep,
		logger:       logger.Named("uniprot"),
	}, nil
}

// Submit starts a mapping job and returns its id.
// Repeated ids are sent once; the service treats the list as a set.
func (c *Client) Submit(ctx context.Context, from, to string, ids []string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("uniprot: client is nil")
	}
	if from == "" || to == "" {
		return "", fmt.Errorf("uniprot: from and to are required")
	}

	unique := idlist.Dedupe(ids)
	if len(unique) == 0 {
		return "", fmt.Errorf("uniprot: at least one id is required")
	}

	form := url.Values{}
	form.Set("from", from)
	form.Set("to", to)
	form.Set("ids", strings.Join(unique, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/idmapping/run", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("uniprot: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.httpClient, req, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("uniprot: submit: %w", err)
	}

	var payload submitResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("uniprot: decode submit response: %w", err)
	}
	if payload.JobID == "" {
		return "", ErrMissingJobID
	}

	c.logger.Debug("submitted mapping job", "job_id", payload.JobID, "from", from, "to", to, "ids", len(unique))
	return payload.JobID, nil
}

// Status performs a single status check
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, error) {
	if jobID == "" {
		return "", fmt.Errorf("uniprot: job id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/idmapping/status/"+url.PathEscape(jobID), nil)
	if err != nil {
		return "", fmt.Errorf("uniprot: build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.statusClient, req, http.StatusOK, http.StatusSeeOther)
	if err != nil {
		return "", fmt.Errorf("uniprot: check status of %s: %w", jobID, err)
	}

	var payload statusResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("uniprot: decode status response: %w", err)
	}
	if payload.JobStatus == "" {
		if len(payload.Messages) > 0 {
			return "", fmt.Errorf("%w: %s", ErrMissingStatus, strings.Join(payload.Messages, "; "))
		}
		return "", ErrMissingStatus
	}

	return JobStatus(payload.JobStatus), nil
}

// Results fetches the mapping of a finished job as from -> [to...] in response order
func (c *Client) Results(ctx context.Context, jobID string) (map[string][]string, error) {
	if jobID == "" {
		return nil, fmt.Errorf("uniprot: job id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/idmapping/stream/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("uniprot: build results request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.httpClient, req, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("uniprot: fetch results of %s: %w", jobID, err)
	}

	results, failed, err := parseResults(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("results processed", "job_id", jobID, "mapped", len(results), "failed", failed)
	return results, nil
}

// PollUntilTerminal checks the job status until it leaves NEW/RUNNING,
// sleeping the poll interval between checks
func (c *Client) PollUntilTerminal(ctx context.Context, jobID string) (JobStatus, error) {
	r := &jobRun{client: c, job: Job{ID: jobID}, state: statePoll}
	if err := r.drive(ctx); err != nil {
		return "", err
	}
	return r.job.Status, nil
}

// Run submits ids, polls the job to a terminal status and fetches the results
// when it finished. Non-success terminal statuses are returned without error.
func (c *Client) Run(ctx context.Context, from, to string, ids []string) (Job, error) {
	r := &jobRun{client: c, from: from, to: to, ids: ids, state: stateSubmit, fetch: true}
	if err := r.drive(ctx); err != nil {
		return Job{}, err
	}
	if r.job.Results == nil {
		r.job.Results = map[string][]string{}
	}
	return r.job, nil
}

func (c *Client) do(client *http.Client, req *http.Request, accept ...int) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if !acceptable(resp.StatusCode, accept) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func acceptable(code int, accept []int) bool {
	for _, a := range accept {
		if code == a {
			return true
		}
	}
	return false
}

func parseResults(body []byte) (map[string][]string, int, error) {
	var payload resultsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("uniprot: decode results: %w", err)
	}

	out := make(map[string][]string)
	for i, pair := range payload.Results {
		to, err := decodeTarget(pair.To)
		if err != nil {
			return nil, 0, fmt.Errorf("uniprot: result %d: %w", i, err)
		}
		out[pair.From] = append(out[pair.From], to)
	}

	return out, len(payload.FailedIDs), nil
}

func decodeTarget(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("missing \"to\"")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode \"to\": %w", err)
		}
		return s, nil
	}

	var entry entrySummary
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", fmt.Errorf("decode \"to\": %w", err)
	}
	if entry.PrimaryAccession == "" {
		return "", fmt.Errorf("\"to\" entry without primaryAccession")
	}
	return entry.PrimaryAccession, nil
}
