package uniprot

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/honeycarbs/idmapping/pkg/logging"
	"github.com/honeycarbs/idmapping/pkg/wait"
)

// Config defines UniProt ID mapping client settings
type Config struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Sleep        wait.SleepFunc
	Logger       *logging.Logger
}

// Client drives UniProt ID mapping jobs
type Client struct {
	baseURL      string
	httpClient   *http.Client
	statusClient *http.Client
	pollInterval time.Duration
	sleep        wait.SleepFunc
	logger       *logging.Logger
}

// JobStatus is the raw jobStatus value reported by the service
type JobStatus string

const (
	StatusNew      JobStatus = "NEW"
	StatusRunning  JobStatus = "RUNNING"
	StatusFinished JobStatus = "FINISHED"
	StatusFailed   JobStatus = "FAILED"
	StatusError    JobStatus = "ERROR"
)

// InProgress reports whether polling should continue
func (s JobStatus) InProgress() bool {
	return s == StatusNew || s == StatusRunning
}

// Job is the outcome of one mapping job.
// Results is empty unless Status is FINISHED.
type Job struct {
	ID      string
	Status  JobStatus
	Results map[string][]string
	Polls   int
}

type submitResponse struct {
	JobID string `json:"jobId"`
}

type statusResponse struct {
	JobStatus string   `json:"jobStatus"`
	Messages  []string `json:"messages"`
}

type resultsResponse struct {
	Results   []resultPair `json:"results"`
	FailedIDs []string     `json:"failedIds"`
}

type resultPair struct {
	From string          `json:"from"`
	To   json.RawMessage `json:"to"`
}

// entrySummary is the part of a UniProtKB entry used when "to" is an object
type entrySummary struct {
	PrimaryAccession string `json:"primaryAccession"`
}
