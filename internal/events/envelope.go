package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ananas-next/internal/constants"

	"github.com/google/uuid"
)

// Envelope 订单事件信封
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderItemLine 事件中的订单行
type OrderItemLine struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderPlacedPayload 下单事件载荷
type OrderPlacedPayload struct {
	OrderID     uint            `json:"order_id"`
	OrderNo     string          `json:"order_no"`
	UserID      uint            `json:"user_id"`
	TotalAmount string          `json:"total_amount"`
	Currency    string          `json:"currency"`
	Items       []OrderItemLine `json:"items"`
}

// OrderStatusChangedPayload 订单状态变更事件载荷
type OrderStatusChangedPayload struct {
	OrderID    uint   `json:"order_id"`
	OrderNo    string `json:"order_no"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// NewEnvelope 封装事件
func NewEnvelope(eventType, producer, correlationID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  constants.EventVersionV1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// DecodePayload 解码信封中的载荷
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
