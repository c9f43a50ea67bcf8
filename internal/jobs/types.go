package jobs

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/insight"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeGenerateInsight computes an insight for a stored date range.
	JobTypeGenerateInsight JobType = "generate_insight"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ErrJobNotFound is returned by JobStore.GetJob for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

// DefaultMaxRetries applies when a job is published without MaxRetries.
const DefaultMaxRetries = 2

// InsightJob asks for an insight over a user's transactions in [From, To].
type InsightJob struct {
	JobID  string     `json:"job_id"`
	UserID string     `json:"user_id"`
	From   civil.Date `json:"from"`
	To     civil.Date `json:"to"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last failure. Loading the snapshot is the only step
	// that can fail; insight generation itself always succeeds.
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`

	// Result is set once the job completes.
	Result *insight.Insight `json:"result,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *InsightJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *InsightJob) GetType() JobType {
	return JobTypeGenerateInsight
}

// GetStatus implements the Job interface.
func (j *InsightJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishInsight enqueues job and fills in its ID, status and
	// timestamps.
	PublishInsight(ctx context.Context, job *InsightJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the attempt failed
// and may trigger a retry.
type JobHandler func(ctx context.Context, job *InsightJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *InsightJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*InsightJob, error)

	// ListJobs retrieves jobs newest first with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*InsightJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
