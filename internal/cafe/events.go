package cafe

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventStatusChanged    = "OrderStatusChanged"
	EventOrderCancelled   = "OrderCancelled"
	EventPaymentConfirmed = "PaymentConfirmed"
	EventNotification     = "NotificationCreated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "cafe-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderCreatedPayload struct {
	OrderID      string `json:"order_id"`
	UserID       string `json:"user_id,omitempty"`
	CustomerName string `json:"customer_name"`
	ChurchGroup  string `json:"church_group,omitempty"`
	TotalAmount  int64  `json:"total_amount"`
	ItemCount    int    `json:"item_count"`
}

type StatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id,omitempty"`
	PrevStatus Status `json:"prev_status"`
	NewStatus  Status `json:"new_status"`
}

type OrderCancelledPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id,omitempty"`
	PrevStatus Status `json:"prev_status"`
	Reason     string `json:"reason"`
	ByRole     Role   `json:"by_role"`
}

type PaymentConfirmedPayload struct {
	OrderID string        `json:"order_id"`
	UserID  string        `json:"user_id,omitempty"`
	Amount  int64         `json:"amount"`
	Method  PaymentMethod `json:"method"`
}

type NotificationPayload struct {
	NotificationID string           `json:"notification_id"`
	UserID         string           `json:"user_id"`
	OrderID        string           `json:"order_id"`
	Type           NotificationType `json:"type"`
	Message        string           `json:"message"`
}
