package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ledgerExchange = "insurance.ledger"

// Event routing keys for accepted transitions.
const (
	ProductProposed = "product.proposed"
	ProductCreated  = "product.created"
	PolicyCreated   = "policy.created"
	PolicyClaimed   = "policy.claimed"
	PolicyExpired   = "policy.expired"
)

// LedgerEvent is the message published after a transition is committed.
type LedgerEvent struct {
	Kind       string    `json:"kind"`
	RecordID   string    `json:"record_id"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher publishes ledger lifecycle events. A nil Publisher is safe and
// publishes nothing, so tests and offline runs need no broker.
type Publisher struct {
	conn *RabbitMQConnection
}

func NewPublisher(conn *RabbitMQConnection) (*Publisher, error) {
	if err := conn.Channel.ExchangeDeclare(ledgerExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Publish sends one event; failures are logged, not returned, because the
// transition has already committed and notification is best-effort.
func (p *Publisher) Publish(ctx context.Context, evt LedgerEvent) {
	if p == nil {
		return
	}

	body, err := json.Marshal(evt)
	if err != nil {
		slog.Error("failed to marshal ledger event", "kind", evt.Kind, "error", err)
		return
	}

	err = p.conn.Channel.PublishWithContext(ctx, ledgerExchange, evt.Kind, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   evt.OccurredAt,
		Body:        body,
	})
	if err != nil {
		slog.Error("failed to publish ledger event", "kind", evt.Kind, "record_id", evt.RecordID, "error", err)
		return
	}

	slog.Info("published ledger event", "kind", evt.Kind, "record_id", evt.RecordID, "version", evt.Version)
}
