package notify_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/notify"
)

func TestStatusForEvent(t *testing.T) {
	tests := []struct {
		name   string
		env    cafe.Envelope
		want   cafe.Status
		wantOK bool
	}{
		{
			name:   "order baru selalu pending",
			env:    envelope(t, cafe.EventOrderCreated, cafe.OrderCreatedPayload{OrderID: "o-1"}),
			want:   cafe.StatusPending,
			wantOK: true,
		},
		{
			name: "status change pakai new_status dari payload",
			env: envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{
				OrderID: "o-1", PrevStatus: cafe.StatusPending, NewStatus: cafe.StatusPreparing,
			}),
			want:   cafe.StatusPreparing,
			wantOK: true,
		},
		{
			name:   "cancel",
			env:    envelope(t, cafe.EventOrderCancelled, cafe.OrderCancelledPayload{OrderID: "o-1"}),
			want:   cafe.StatusCancelled,
			wantOK: true,
		},
		{
			name:   "konfirmasi pembayaran tidak mengubah status",
			env:    envelope(t, cafe.EventPaymentConfirmed, cafe.PaymentConfirmedPayload{OrderID: "o-1"}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := notify.StatusForEvent(tt.env)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStatusForEvent_MalformedPayload(t *testing.T) {
	env := envelope(t, cafe.EventStatusChanged, cafe.StatusChangedPayload{})
	env.Payload = json.RawMessage(`{not json`)

	_, ok := notify.StatusForEvent(env)
	assert.False(t, ok)
}
