package mailer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/events"
	"github.com/phrazzld/taskman/internal/job"
	"github.com/phrazzld/taskman/internal/mailer"
	"github.com/phrazzld/taskman/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	jobs []job.Job
	err  error
}

func (q *recordingQueue) Enqueue(j job.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, j)
	return nil
}

func userEvent(t *testing.T, eventType string) *events.Event {
	t.Helper()
	event, err := events.NewEvent(eventType, events.UserPayload{
		UserID: uuid.New(),
		Name:   "Ann",
		Email:  "ann@example.com",
	})
	require.NoError(t, err)
	return event
}

func TestNotificationHandler_EnqueuesMailForUserEvents(t *testing.T) {
	tests := []struct {
		eventType string
		subject   string
	}{
		{events.TypeUserRegistered, mailer.WelcomeMessage("", "").Subject},
		{events.TypeUserDeleted, mailer.FarewellMessage("", "").Subject},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			sender := &mocks.RecordingSender{}
			queue := &recordingQueue{}
			h := mailer.NewNotificationHandler(sender, queue, nil)

			require.NoError(t, h.HandleEvent(context.Background(), userEvent(t, tt.eventType)))
			require.Len(t, queue.jobs, 1)
			assert.Equal(t, mailer.JobTypeSendMail, queue.jobs[0].Type())
			assert.Empty(t, sender.Messages(), "mail must not be sent before the job runs")

			require.NoError(t, queue.jobs[0].Execute(context.Background()))
			msgs := sender.Messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, "ann@example.com", msgs[0].To)
			assert.Equal(t, tt.subject, msgs[0].Subject)
		})
	}
}

func TestNotificationHandler_IgnoresOtherEvents(t *testing.T) {
	queue := &recordingQueue{}
	h := mailer.NewNotificationHandler(&mocks.RecordingSender{}, queue, nil)

	require.NoError(t, h.HandleEvent(context.Background(), userEvent(t, "task.created")))
	assert.Empty(t, queue.jobs)
}

func TestNotificationHandler_SwallowsFailures(t *testing.T) {
	queue := &recordingQueue{err: job.ErrQueueFull}
	h := mailer.NewNotificationHandler(&mocks.RecordingSender{}, queue, nil)

	assert.NoError(t, h.HandleEvent(context.Background(), userEvent(t, events.TypeUserRegistered)))

	bad := &events.Event{ID: uuid.New(), Type: events.TypeUserDeleted, Payload: []byte("{")}
	assert.NoError(t, h.HandleEvent(context.Background(), bad))
}

func TestSendJob_PropagatesSenderError(t *testing.T) {
	sendErr := errors.New("relay unavailable")
	sender := &mocks.RecordingSender{Err: sendErr}

	j := mailer.NewSendJob(sender, mailer.FarewellMessage("bob@example.com", "Bob"))
	err := j.Execute(context.Background())

	require.ErrorIs(t, err, sendErr)
	assert.Len(t, sender.Messages(), 1)
	assert.Equal(t, "bob@example.com", j.Message().To)
}

func TestSendJob_RunsOnWorkerPool(t *testing.T) {
	sender := &mocks.RecordingSender{}
	queue := job.NewQueue(4, nil)
	pool := job.NewWorkerPool(queue, job.WorkerPoolConfig{WorkerCount: 1}, nil)
	pool.Start()

	h := mailer.NewNotificationHandler(sender, queue, nil)
	require.NoError(t, h.HandleEvent(context.Background(), userEvent(t, events.TypeUserRegistered)))

	queue.Close()
	require.NoError(t, pool.Stop(context.Background()))

	assert.Len(t, sender.Messages(), 1)
}
