package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-atacado/internal/events"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

// Enqueuer publishes notification tasks for emitted domain events. Events
// without a matching task type are silently skipped.
type Enqueuer struct {
	Client  *asynq.Client
	Logger  *zerolog.Logger
	Timeout time.Duration
}

var _ events.DeliveryScheduler = Enqueuer{}

// Schedule implements events.DeliveryScheduler.
func (e Enqueuer) Schedule(ctx context.Context, event repo.DomainEvent) error {
	kind, ok := taskForTopic(event.Topic)
	if !ok {
		return nil
	}
	if e.Client == nil {
		return nil
	}
	body, err := json.Marshal(eventTask{
		EventID:     event.ID.String(),
		Topic:       event.Topic,
		AggregateID: event.AggregateID.String(),
		Payload:     json.RawMessage(event.Payload),
	})
	if err != nil {
		return fmt.Errorf("notify: encode task %s: %w", kind, err)
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// The event id doubles as the task id so a retried Emit never
	// produces a duplicate notification.
	info, err := e.Client.EnqueueContext(ctx, asynq.NewTask(kind, body),
		asynq.TaskID(event.ID.String()),
		asynq.MaxRetry(5),
		asynq.Timeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("notify: enqueue %s: %w", kind, err)
	}
	if e.Logger != nil {
		e.Logger.Debug().
			Str("task_id", info.ID).
			Str("task_type", kind).
			Str("queue", info.Queue).
			Msg("notification task enqueued")
	}
	return nil
}
