package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/job"
)

// JobTypeSendMail identifies SendJob in logs.
const JobTypeSendMail = "send_mail"

// SendJob delivers one message as a background job.
type SendJob struct {
	id     uuid.UUID
	sender Sender
	msg    Message
}

var _ job.Job = (*SendJob)(nil)

// NewSendJob creates a job that sends msg through sender.
func NewSendJob(sender Sender, msg Message) *SendJob {
	return &SendJob{
		id:     uuid.New(),
		sender: sender,
		msg:    msg,
	}
}

// ID implements job.Job.
func (j *SendJob) ID() uuid.UUID { return j.id }

// Type implements job.Job.
func (j *SendJob) Type() string { return JobTypeSendMail }

// Message returns the message the job will send.
func (j *SendJob) Message() Message { return j.msg }

// Execute implements job.Job.
func (j *SendJob) Execute(ctx context.Context) error {
	if err := j.sender.Send(ctx, j.msg); err != nil {
		return fmt.Errorf("%s job %s: %w", JobTypeSendMail, j.id, err)
	}
	return nil
}
