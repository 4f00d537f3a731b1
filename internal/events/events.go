package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	OrderPlaced     = "order.placed"
	OrderCancelled  = "order.cancelled"
	CartCheckedOut  = "cart.checked_out"
	envelopeVersion = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// New wraps payload into an envelope stamped with a fresh id and the current time
func New(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Publisher delivers committed domain events. Implementations must not block
// the caller for long and never report failures back into the request.
type Publisher interface {
	Publish(ctx context.Context, env Envelope)
}

// Multi fans an envelope out to every publisher in order
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, env Envelope) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, env)
		}
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Envelope) {}

// ---- Payloads ----

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
	Actor     Actor  `json:"actor"`
	Message   string `json:"message"`
}

type OrderPayload struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	StockLeft int    `json:"stock_left"`
	Actor     Actor  `json:"actor"`
}

type CheckoutPayload struct {
	OrderIDs    []string `json:"order_ids"`
	Unavailable []string `json:"unavailable"`
	Actor       Actor    `json:"actor"`
}
