package notify

import (
	"encoding/json"

	"github.com/noah-isme/backend-atacado/internal/events"
)

const (
	// TaskOrderCreated carries a confirmed order to the notification worker.
	TaskOrderCreated = "notify:order_created"
	// TaskOrderRejected records rejected checkouts for follow-up.
	TaskOrderRejected = "notify:order_rejected"
)

// eventTask is the wire format shared between the enqueuer and the worker.
type eventTask struct {
	EventID     string          `json:"eventId"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
}

func taskForTopic(topic string) (string, bool) {
	switch topic {
	case events.TopicOrderCreated:
		return TaskOrderCreated, true
	case events.TopicOrderRejected:
		return TaskOrderRejected, true
	default:
		return "", false
	}
}
