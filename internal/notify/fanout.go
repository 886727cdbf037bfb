package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	kafkax "github.com/graciacafe/cafe-orders/internal/kafka"
	"github.com/graciacafe/cafe-orders/internal/redisx"
)

// Store adalah bagian persistence yang dibutuhkan fan-out.
type Store interface {
	InsertNotification(ctx context.Context, n *cafe.Notification) error
	ListAdminIDs(ctx context.Context) ([]string, error)
}

// Engine menerjemahkan transisi status yang sudah diterima menjadi
// Notification + addressee. Seluruhnya best-effort: kegagalan insert
// atau push dicatat lalu pesan tetap di-commit, tidak pernah menjalar
// balik ke mutasi asalnya.
type Engine struct {
	Store       Store
	Redis       *redis.Client
	Push        Pusher
	ServiceName string
}

// HandleOrderEvent dipasang sebagai handler consumer Kafka.
func (e *Engine) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env cafe.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan membaik kalau diulang; commit saja
		log.Error().Err(err).Str("topic", m.Topic).Msg("decode envelope")
		return nil
	}

	// dedup via Redis (pakai event_id)
	if e.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
		if seen, _ := redisx.Exists(ctx, e.Redis, dkey); seen {
			return nil
		}
		_ = e.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	targets, err := e.Derive(ctx, env)
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("derive notification")
		return nil
	}

	for i := range targets {
		n := &targets[i]
		if err := e.Store.InsertNotification(ctx, n); err != nil {
			log.Error().Err(err).Str("order_id", n.OrderID).Str("user_id", n.UserID).Msg("insert notification")
			continue
		}
		e.announce(ctx, n)
		if e.Push != nil {
			if err := e.Push.Push(ctx, n.UserID, "Gracia Café", n.Message, string(n.Type), "/orders/"+n.OrderID); err != nil {
				log.Warn().Err(err).Str("user_id", n.UserID).Msg("push delivery")
			}
		}
	}
	return nil
}

// Derive menghasilkan notifikasi untuk satu envelope sesuai tabel derivasi.
// Order tanpa akun (user_id kosong) dilewati; event order baru justru
// fan-out ke semua admin.
func (e *Engine) Derive(ctx context.Context, env cafe.Envelope) ([]cafe.Notification, error) {
	switch env.EventType {
	case cafe.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[cafe.OrderCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		admins, err := e.Store.ListAdminIDs(ctx)
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("New order from %s", p.CustomerName)
		if p.ChurchGroup != "" {
			msg = fmt.Sprintf("New order from %s (%s)", p.CustomerName, p.ChurchGroup)
		}
		out := make([]cafe.Notification, 0, len(admins))
		for _, adminID := range admins {
			out = append(out, newNotification(adminID, p.OrderID, cafe.NotifOrderReceived, msg))
		}
		return out, nil

	case cafe.EventStatusChanged:
		p, err := kafkax.UnwrapPayload[cafe.StatusChangedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, nil
		}
		typ, msg, ok := statusMessage(p.NewStatus)
		if !ok {
			return nil, nil
		}
		return []cafe.Notification{newNotification(p.UserID, p.OrderID, typ, msg)}, nil

	case cafe.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[cafe.OrderCancelledPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, nil
		}
		msg := "Your order has been cancelled"
		if p.Reason != "" {
			msg = fmt.Sprintf("Your order has been cancelled. Reason: %s", p.Reason)
		}
		return []cafe.Notification{newNotification(p.UserID, p.OrderID, cafe.NotifOrderCancelled, msg)}, nil

	case cafe.EventPaymentConfirmed:
		p, err := kafkax.UnwrapPayload[cafe.PaymentConfirmedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, nil
		}
		return []cafe.Notification{newNotification(p.UserID, p.OrderID, cafe.NotifPaymentConfirmed, "Payment for your order has been confirmed")}, nil
	}
	return nil, nil
}

func statusMessage(s cafe.Status) (cafe.NotificationType, string, bool) {
	switch s {
	case cafe.StatusPreparing:
		return cafe.NotifOrderPreparing, "Your order is being prepared", true
	case cafe.StatusReady:
		return cafe.NotifOrderReady, "Your order is ready for pickup", true
	case cafe.StatusCompleted:
		return cafe.NotifOrderCompleted, "Your order has been picked up", true
	}
	return "", "", false
}

func newNotification(userID, orderID string, typ cafe.NotificationType, msg string) cafe.Notification {
	return cafe.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		OrderID: orderID,
		Type:    typ,
		Message: msg,
		Status:  cafe.NotificationUnread,
	}
}

// announce menerbitkan event notifikasi ke hub realtime lewat Redis.
func (e *Engine) announce(ctx context.Context, n *cafe.Notification) {
	if e.Redis == nil {
		return
	}
	env := cafe.Envelope{
		EventID:       uuid.NewString(),
		EventType:     cafe.EventNotification,
		EventVersion:  1,
		OccurredAt:    n.CreatedAt,
		Producer:      e.ServiceName,
		CorrelationID: n.OrderID,
		Payload: kafkax.MustMarshal(cafe.NotificationPayload{
			NotificationID: n.ID,
			UserID:         n.UserID,
			OrderID:        n.OrderID,
			Type:           n.Type,
			Message:        n.Message,
		}),
	}
	if err := e.Redis.Publish(ctx, cafe.ChannelNotificationEvents, kafkax.MustMarshal(env)).Err(); err != nil {
		log.Warn().Err(err).Str("notification_id", n.ID).Msg("announce notification")
	}
}
