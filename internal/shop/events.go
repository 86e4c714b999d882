package shop

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderConfirmed = "OrderConfirmed"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderSummary is the part of an order that goes into the confirmation email.
type OrderSummary struct {
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

type OrderConfirmedPayload struct {
	Order   OrderSummary `json:"order"`
	EmailTo string       `json:"email_to"`
}

func Summarize(o Order) OrderSummary {
	return OrderSummary{
		OrderID:       o.ID,
		UserID:        o.UserID,
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
	}
}
