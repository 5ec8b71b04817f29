package mailer

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskman/internal/events"
	"github.com/phrazzld/taskman/internal/job"
	"github.com/phrazzld/taskman/internal/redact"
)

// NotificationHandler turns user lifecycle events into mail jobs. It never
// fails the emitting request: problems are logged and swallowed.
type NotificationHandler struct {
	sender Sender
	queue  job.QueueWriter
	logger *slog.Logger
}

var _ events.EventHandler = (*NotificationHandler)(nil)

// NewNotificationHandler creates a handler that enqueues messages for sender
// onto queue.
func NewNotificationHandler(sender Sender, queue job.QueueWriter, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		sender: sender,
		queue:  queue,
		logger: logger.With("component", "mail_notification_handler"),
	}
}

// HandleEvent implements events.EventHandler.
func (h *NotificationHandler) HandleEvent(_ context.Context, event *events.Event) error {
	var build func(email, name string) Message
	switch event.Type {
	case events.TypeUserRegistered:
		build = WelcomeMessage
	case events.TypeUserDeleted:
		build = FarewellMessage
	default:
		h.logger.Debug("ignoring event", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	var payload events.UserPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			"error", redact.Error(err),
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	sendJob := NewSendJob(h.sender, build(payload.Email, payload.Name))
	if err := h.queue.Enqueue(sendJob); err != nil {
		h.logger.Error("failed to enqueue mail job",
			"error", redact.Error(err),
			"event_id", event.ID,
			"event_type", event.Type,
			"user_id", payload.UserID)
		return nil
	}

	h.logger.Debug("mail job enqueued",
		"job_id", sendJob.ID(),
		"event_id", event.ID,
		"event_type", event.Type,
		"user_id", payload.UserID)
	return nil
}
