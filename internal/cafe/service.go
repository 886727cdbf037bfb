package cafe

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// Store adalah kontrak persistence yang dibutuhkan service; *Repo memenuhinya.
type Store interface {
	CreateOrderTx(ctx context.Context, o *Order, items []ItemInput) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, f Filter) ([]Order, error)
	UpdateStatusCond(ctx context.Context, id string, from, to Status) error
	CancelCond(ctx context.Context, id, reason string) error
	ConfirmPaymentCond(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}

// Events menerima envelope hasil mutasi yang sudah sukses. Publish adalah
// side effect best-effort: error-nya dicatat service, tidak pernah
// membatalkan atau mengubah hasil mutasi.
type Events interface {
	PublishOrderEvent(ctx context.Context, env Envelope) error
}

type Service struct {
	Store       Store
	Events      Events
	ServiceName string
}

type CreateOrderInput struct {
	UserID        string        `json:"user_id,omitempty"`
	CustomerName  string        `json:"customer_name"`
	ChurchGroup   string        `json:"church_group,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
	Items         []ItemInput   `json:"items"`
}

func (in *CreateOrderInput) validate() error {
	if in.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Reason: "required"}
	}
	if in.PaymentMethod != PaymentCash && in.PaymentMethod != PaymentTransfer {
		return &ValidationError{Field: "payment_method", Reason: "must be cash or transfer"}
	}
	if len(in.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	for _, it := range in.Items {
		if it.MenuID == "" {
			return &ValidationError{Field: "items.menu_id", Reason: "required"}
		}
		if it.Quantity <= 0 {
			return &ValidationError{Field: "items.quantity", Reason: "must be positive"}
		}
		if it.UnitPrice < 0 {
			return &ValidationError{Field: "items.unit_price", Reason: "must be non-negative"}
		}
		if it.TotalPrice != int64(it.Quantity)*it.UnitPrice {
			return &ValidationError{Field: "items.total_price", Reason: "must equal quantity * unit_price"}
		}
	}
	return nil
}

// CreateOrder: snapshot cart -> order pending/pending. total_amount dihitung
// di sini dari item, bukan dipercaya dari caller.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var total int64
	for _, it := range in.Items {
		total += it.TotalPrice
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		CustomerName:  in.CustomerName,
		ChurchGroup:   in.ChurchGroup,
		TotalAmount:   total,
		Status:        StatusPending,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: PaymentPending,
		Notes:         in.Notes,
	}
	if err := s.Store.CreateOrderTx(ctx, o, in.Items); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:      o.ID,
		UserID:       o.UserID,
		CustomerName: o.CustomerName,
		ChurchGroup:  o.ChurchGroup,
		TotalAmount:  o.TotalAmount,
		ItemCount:    len(o.Items),
	})
	log.Info().Str("order_id", o.ID).Int64("total", total).Msg("order created")
	return o, nil
}

// ChangeStatus menjalankan satu langkah maju di state machine. Pembatalan
// lewat sini didelegasikan ke CancelOrder tanpa alasan.
func (s *Service) ChangeStatus(ctx context.Context, orderID string, newStatus Status, actor Actor) (*Order, error) {
	if !newStatus.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if newStatus == StatusCancelled {
		return s.CancelOrder(ctx, orderID, "", actor)
	}

	o, err := s.getOrderRetry(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := AllowedActor(o.Status, newStatus, actor, o.UserID); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateStatusCond(ctx, orderID, o.Status, newStatus); err != nil {
		return nil, err
	}

	prev := o.Status
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	s.publish(ctx, EventStatusChanged, o.ID, StatusChangedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		PrevStatus: prev,
		NewStatus:  newStatus,
	})
	log.Info().Str("order_id", o.ID).Str("from", string(prev)).Str("to", string(newStatus)).Msg("status changed")
	return o, nil
}

// CancelOrder: hanya dari pending; admin atau customer pemilik.
// Alasan disimpan di order dan ikut ke notifikasi.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason string, actor Actor) (*Order, error) {
	o, err := s.getOrderRetry(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := AllowedActor(o.Status, StatusCancelled, actor, o.UserID); err != nil {
		return nil, err
	}
	if err := s.Store.CancelCond(ctx, orderID, reason); err != nil {
		return nil, err
	}

	prev := o.Status
	o.Status = StatusCancelled
	o.CancellationReason = reason
	o.UpdatedAt = time.Now().UTC()
	s.publish(ctx, EventOrderCancelled, o.ID, OrderCancelledPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		PrevStatus: prev,
		Reason:     reason,
		ByRole:     actor.Role,
	})
	log.Info().Str("order_id", o.ID).Str("reason", reason).Msg("order cancelled")
	return o, nil
}

// ConfirmPayment: admin-only, dan hanya saat status sudah completed.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string, actor Actor) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	o, err := s.getOrderRetry(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.ConfirmPaymentCond(ctx, orderID); err != nil {
		return nil, err
	}

	o.PaymentStatus = PaymentConfirmed
	o.UpdatedAt = time.Now().UTC()
	s.publish(ctx, EventPaymentConfirmed, o.ID, PaymentConfirmedPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
		Amount:  o.TotalAmount,
		Method:  o.PaymentMethod,
	})
	log.Info().Str("order_id", o.ID).Msg("payment confirmed")
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.getOrderRetry(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	var out []Order
	err := retry.Do(ctx, readBackoff(), func(ctx context.Context) error {
		var err error
		out, err = s.Store.ListOrders(ctx, f)
		return retryableRead(err)
	})
	return out, err
}

// HardDelete: escape hatch admin; tidak menerbitkan event.
func (s *Service) HardDelete(ctx context.Context, orderID string, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.Store.HardDelete(ctx, orderID)
}

// Read path boleh retry dengan backoff terbatas; write path fail-fast
// supaya tidak menggandakan side effect.
func readBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
}

func retryableRead(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || IsValidation(err) {
		return err
	}
	return retry.RetryableError(err)
}

func (s *Service) getOrderRetry(ctx context.Context, orderID string) (*Order, error) {
	var o *Order
	err := retry.Do(ctx, readBackoff(), func(ctx context.Context) error {
		var err error
		o, err = s.Store.GetOrder(ctx, orderID)
		return retryableRead(err)
	})
	return o, err
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       b,
	}
	if err := s.Events.PublishOrderEvent(ctx, env); err != nil {
		// side effect gagal: catat saja, mutasi utama tetap sukses
		log.Error().Err(err).Str("event_type", eventType).Str("order_id", orderID).Msg("publish order event")
	}
}
