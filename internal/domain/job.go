package domain

import "time"

// JobStatus enumerates generation job lifecycle states.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ThumbnailCount is the fixed length of every terminal thumbnail list. Real
// results are padded with fallback entries up to this count.
const ThumbnailCount = 5

// JobTTL is how long a job record stays readable in the store.
const JobTTL = time.Hour

// JobKeyPrefix namespaces job ids in the store.
const JobKeyPrefix = "thumbnail:job:"

// JobData is the payload half of a stored job record.
type JobData struct {
	Thumbnails           []string `json:"thumbnails,omitempty"`
	Error                string   `json:"error,omitempty"`
	Message              string   `json:"message,omitempty"`
	RequiresVerification bool     `json:"requires_verification,omitempty"`
	GenerationMS         int64    `json:"generation_ms,omitempty"`
}

// JobRecord is the stored shape of a job.
type JobRecord struct {
	Status JobStatus `json:"status"`
	Data   JobData   `json:"data"`
}

// GenerateEvent is the payload handed from the dispatcher to a worker.
type GenerateEvent struct {
	JobID     string    `json:"job_id"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
}
