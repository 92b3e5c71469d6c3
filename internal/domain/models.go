package domain

// Mapping holds source identifier -> target identifiers, targets in first-seen order.
// A missing key means no mapping was found.
type Mapping map[string][]string

// Add appends target to the list kept for id
func (m Mapping) Add(id, target string) {
	m[id] = append(m[id], target)
}

// Clone returns a deep copy of the mapping
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for id, targets := range m {
		out[id] = append([]string(nil), targets...)
	}
	return out
}

// JobStatus is the remote mapping job status as reported by the service
type JobStatus string

const (
	JobStatusNew      JobStatus = "NEW"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusFinished JobStatus = "FINISHED"
	JobStatusFailed   JobStatus = "FAILED"
	JobStatusError    JobStatus = "ERROR"
)

// InProgress reports whether the job may still change status
func (s JobStatus) InProgress() bool {
	return s == JobStatusNew || s == JobStatusRunning
}

// Finished reports the success terminal status
func (s JobStatus) Finished() bool {
	return s == JobStatusFinished
}

// Job is a remote mapping job driven to a terminal status.
// Results is only populated when Status is FINISHED.
type Job struct {
	ID      string
	Status  JobStatus
	Results Mapping
}
