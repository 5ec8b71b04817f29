package job

import (
	"context"

	"github.com/google/uuid"
)

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier, used in logs
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type QueueReader interface {
	// Channel returns a read-only channel for consuming jobs.
	// The channel is closed when the queue is closed.
	Channel() <-chan Job
}

// QueueWriter provides write access to the job queue
// allowing services to enqueue jobs for processing
type QueueWriter interface {
	// Enqueue adds a job to the queue for processing.
	// Returns ErrQueueFull or ErrQueueClosed without blocking.
	Enqueue(job Job) error
}
