package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/notify"
)

type fakeStore struct {
	inserted  []cafe.Notification
	insertErr error
	admins    []string
}

func (s *fakeStore) InsertNotification(ctx context.Context, n *cafe.Notification) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	n.CreatedAt = time.Now()
	s.inserted = append(s.inserted, *n)
	return nil
}

func (s *fakeStore) ListAdminIDs(ctx context.Context) ([]string, error) {
	return s.admins, nil
}

func envelope(t *testing.T, eventType string, payload any) cafe.Envelope {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return cafe.Envelope{
		EventID:      "ev-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now(),
		Payload:      b,
	}
}

func TestDerive_StatusTransitions(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{}}

	tests := []struct {
		newStatus cafe.Status
		wantType  cafe.NotificationType
		wantMsg   string
	}{
		{cafe.StatusPreparing, cafe.NotifOrderPreparing, "Your order is being prepared"},
		{cafe.StatusReady, cafe.NotifOrderReady, "Your order is ready for pickup"},
		{cafe.StatusCompleted, cafe.NotifOrderCompleted, "Your order has been picked up"},
	}
	for _, tt := range tests {
		t.Run(string(tt.newStatus), func(t *testing.T) {
			env := envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{
				OrderID:   "ord-1",
				UserID:    "cust-1",
				NewStatus: tt.newStatus,
			})
			out, err := engine.Derive(context.Background(), env)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, "cust-1", out[0].UserID)
			assert.Equal(t, "ord-1", out[0].OrderID)
			assert.Equal(t, tt.wantType, out[0].Type)
			assert.Equal(t, tt.wantMsg, out[0].Message)
			assert.Equal(t, cafe.NotificationUnread, out[0].Status)
		})
	}
}

// Pesanan tanpa akun: tidak ada addressee, tidak ada notifikasi.
func TestDerive_AnonymousOrderSkipped(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{}}

	env := envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{
		OrderID:   "ord-1",
		NewStatus: cafe.StatusPreparing,
	})
	out, err := engine.Derive(context.Background(), env)
	require.NoError(t, err)
	assert.Empty(t, out)
}

// Order baru fan-out ke semua admin, bukan satu user.
func TestDerive_NewOrderFansOutToAdmins(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{admins: []string{"adm-1", "adm-2"}}}

	env := envelope(t, cafe.EventOrderCreated, cafe.OrderCreatedPayload{
		OrderID:      "ord-1",
		CustomerName: "Maria",
		ChurchGroup:  "Youth",
	})
	out, err := engine.Derive(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, n := range out {
		assert.Equal(t, cafe.NotifOrderReceived, n.Type)
		assert.Equal(t, "New order from Maria (Youth)", n.Message)
	}
	assert.ElementsMatch(t, []string{"adm-1", "adm-2"}, []string{out[0].UserID, out[1].UserID})
}

func TestDerive_CancellationCarriesReason(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{}}

	env := envelope(t, cafe.EventOrderCancelled, cafe.OrderCancelledPayload{
		OrderID: "ord-1",
		UserID:  "cust-1",
		Reason:  "out of stock",
	})
	out, err := engine.Derive(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, cafe.NotifOrderCancelled, out[0].Type)
	assert.Equal(t, "Your order has been cancelled. Reason: out of stock", out[0].Message)
}

func TestDerive_PaymentConfirmed(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{}}

	env := envelope(t, cafe.EventPaymentConfirmed, cafe.PaymentConfirmedPayload{
		OrderID: "ord-1",
		UserID:  "cust-1",
		Amount:  7500,
	})
	out, err := engine.Derive(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, cafe.NotifPaymentConfirmed, out[0].Type)
}

func TestHandleOrderEvent_InsertsAndCommits(t *testing.T) {
	store := &fakeStore{}
	engine := &notify.Engine{Store: store}

	env := envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{
		OrderID:   "ord-1",
		UserID:    "cust-1",
		NewStatus: cafe.StatusReady,
	})
	b, err := json.Marshal(env)
	require.NoError(t, err)

	err = engine.HandleOrderEvent(context.Background(), kafkago.Message{Value: b})
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, cafe.NotifOrderReady, store.inserted[0].Type)
}

// Best-effort: insert notifikasi gagal -> tetap commit (return nil),
// tidak ada error yang menjalar balik.
func TestHandleOrderEvent_InsertFailureSwallowed(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{insertErr: errors.New("db down")}}

	env := envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{
		OrderID:   "ord-1",
		UserID:    "cust-1",
		NewStatus: cafe.StatusReady,
	})
	b, err := json.Marshal(env)
	require.NoError(t, err)

	assert.NoError(t, engine.HandleOrderEvent(context.Background(), kafkago.Message{Value: b}))
}

// Pesan korup tidak akan membaik kalau diulang: commit saja.
func TestHandleOrderEvent_MalformedMessageCommitted(t *testing.T) {
	engine := &notify.Engine{Store: &fakeStore{}}
	assert.NoError(t, engine.HandleOrderEvent(context.Background(), kafkago.Message{Value: []byte("not json")}))
}
