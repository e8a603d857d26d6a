package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-atacado/internal/common"
)

// Worker consumes notification tasks. The current implementation logs the
// confirmation that a real deployment would hand to an e-mail or WhatsApp
// provider.
type Worker struct {
	Logger zerolog.Logger
}

// Mux returns an asynq mux with all notification handlers registered.
func (w Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskOrderCreated, w.HandleOrderCreated)
	mux.HandleFunc(TaskOrderRejected, w.HandleOrderRejected)
	return mux
}

type orderCreatedPayload struct {
	OrderID    string `json:"orderId"`
	CartID     string `json:"cartId"`
	TotalQty   int    `json:"totalQty"`
	FinalValue int64  `json:"finalValue"`
}

// HandleOrderCreated processes a confirmed order notification.
func (w Worker) HandleOrderCreated(_ context.Context, t *asynq.Task) error {
	var task eventTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("notify: decode %s: %w", t.Type(), err)
	}
	var order orderCreatedPayload
	if err := json.Unmarshal(task.Payload, &order); err != nil {
		return fmt.Errorf("notify: decode order payload: %w", err)
	}
	w.Logger.Info().
		Str("event_id", task.EventID).
		Str("order_id", order.OrderID).
		Int("total_qty", order.TotalQty).
		Str("final_value", common.FormatBRL(order.FinalValue)).
		Msg("pedido confirmado, notificação de confirmação enviada")
	return nil
}

type orderRejectedPayload struct {
	CartID string   `json:"cartId"`
	Errors []string `json:"errors"`
}

// HandleOrderRejected records a rejected checkout attempt.
func (w Worker) HandleOrderRejected(_ context.Context, t *asynq.Task) error {
	var task eventTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("notify: decode %s: %w", t.Type(), err)
	}
	var rejection orderRejectedPayload
	if err := json.Unmarshal(task.Payload, &rejection); err != nil {
		return fmt.Errorf("notify: decode rejection payload: %w", err)
	}
	w.Logger.Warn().
		Str("event_id", task.EventID).
		Str("cart_id", rejection.CartID).
		Strs("errors", rejection.Errors).
		Msg("checkout rejeitado pelas regras de pedido mínimo")
	return nil
}
