package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/events"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

func TestTaskForTopic(t *testing.T) {
	kind, ok := taskForTopic(events.TopicOrderCreated)
	require.True(t, ok)
	require.Equal(t, TaskOrderCreated, kind)

	kind, ok = taskForTopic(events.TopicOrderRejected)
	require.True(t, ok)
	require.Equal(t, TaskOrderRejected, kind)

	_, ok = taskForTopic("inventory.adjusted")
	require.False(t, ok)
}

func TestScheduleSkipsUnmappedTopics(t *testing.T) {
	enq := Enqueuer{}
	err := enq.Schedule(context.Background(), repo.DomainEvent{Topic: "inventory.adjusted"})
	require.NoError(t, err)
}

func TestHandleOrderCreated(t *testing.T) {
	body, err := json.Marshal(eventTask{
		EventID: "ev-1",
		Topic:   events.TopicOrderCreated,
		Payload: json.RawMessage(`{"orderId":"ord-1","cartId":"cart-1","totalQty":60,"finalValue":43092}`),
	})
	require.NoError(t, err)

	w := Worker{Logger: zerolog.Nop()}
	err = w.HandleOrderCreated(context.Background(), asynq.NewTask(TaskOrderCreated, body))
	require.NoError(t, err)
}

func TestHandleOrderCreatedRejectsGarbage(t *testing.T) {
	w := Worker{Logger: zerolog.Nop()}
	err := w.HandleOrderCreated(context.Background(), asynq.NewTask(TaskOrderCreated, []byte("not json")))
	require.Error(t, err)
}

func TestHandleOrderRejected(t *testing.T) {
	body, err := json.Marshal(eventTask{
		EventID: "ev-2",
		Topic:   events.TopicOrderRejected,
		Payload: json.RawMessage(`{"cartId":"cart-1","errors":["pedido abaixo do mínimo"]}`),
	})
	require.NoError(t, err)

	w := Worker{Logger: zerolog.Nop()}
	err = w.HandleOrderRejected(context.Background(), asynq.NewTask(TaskOrderRejected, body))
	require.NoError(t, err)
}
