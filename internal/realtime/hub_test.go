package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/realtime"
)

func orderEvent(orderID, userID string) realtime.Event {
	return realtime.Event{
		Kind:    realtime.KindOrder,
		OrderID: orderID,
		UserID:  userID,
		Env:     cafe.Envelope{EventType: cafe.EventStatusChanged, CorrelationID: orderID},
	}
}

func drain(c chan realtime.Event) []realtime.Event {
	var out []realtime.Event
	for {
		select {
		case ev, ok := <-c:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHub_RolePartitioning(t *testing.T) {
	hub := realtime.NewHub()
	adminSub := hub.Subscribe(cafe.RoleAdmin, "adm-1")
	ownerSub := hub.Subscribe(cafe.RoleCustomer, "cust-1")
	otherSub := hub.Subscribe(cafe.RoleCustomer, "cust-2")

	hub.Dispatch(orderEvent("ord-1", "cust-1"))

	assert.Len(t, drain(adminSub.C), 1, "admin sees every order mutation")
	assert.Len(t, drain(ownerSub.C), 1, "owner sees own order")
	assert.Empty(t, drain(otherSub.C), "other customer sees nothing")
}

func TestHub_AnonymousOrderOnlyToAdmins(t *testing.T) {
	hub := realtime.NewHub()
	adminSub := hub.Subscribe(cafe.RoleAdmin, "adm-1")
	custSub := hub.Subscribe(cafe.RoleCustomer, "cust-1")

	hub.Dispatch(orderEvent("ord-1", ""))

	assert.Len(t, drain(adminSub.C), 1)
	assert.Empty(t, drain(custSub.C))
}

func TestHub_NotificationOnlyToAddressee(t *testing.T) {
	hub := realtime.NewHub()
	adminSub := hub.Subscribe(cafe.RoleAdmin, "adm-1")
	custSub := hub.Subscribe(cafe.RoleCustomer, "cust-1")

	hub.Dispatch(realtime.Event{
		Kind:    realtime.KindNotification,
		OrderID: "ord-1",
		UserID:  "cust-1",
		Env:     cafe.Envelope{EventType: cafe.EventNotification},
	})

	assert.Empty(t, drain(adminSub.C), "notifikasi bukan broadcast, hanya ke addressee")
	assert.Len(t, drain(custSub.C), 1)
}

func TestSubscription_CancelIdempotent(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe(cafe.RoleCustomer, "cust-1")

	sub.Cancel()
	assert.NotPanics(t, func() { sub.Cancel() })

	// setelah cancel tidak ada event baru
	hub.Dispatch(orderEvent("ord-1", "cust-1"))
	_, ok := <-sub.C
	assert.False(t, ok, "channel must be closed and empty")
}

// Satu langganan aktif per (role, identity): subscribe ulang menutup
// langganan sebelumnya.
func TestHub_ResubscribeReplacesPrevious(t *testing.T) {
	hub := realtime.NewHub()
	first := hub.Subscribe(cafe.RoleCustomer, "cust-1")
	second := hub.Subscribe(cafe.RoleCustomer, "cust-1")

	_, ok := <-first.C
	require.False(t, ok, "first subscription must be closed")

	hub.Dispatch(orderEvent("ord-1", "cust-1"))
	assert.Len(t, drain(second.C), 1)

	// cancel langganan lama tidak boleh mengganggu yang baru
	first.Cancel()
	hub.Dispatch(orderEvent("ord-2", "cust-1"))
	assert.Len(t, drain(second.C), 1)
}

// At-most-once: subscriber lambat kehilangan event, Dispatch tidak blokir.
func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe(cafe.RoleAdmin, "adm-1")

	for i := 0; i < 100; i++ {
		hub.Dispatch(orderEvent("ord-1", "cust-1"))
	}
	got := drain(sub.C)
	assert.True(t, len(got) < 100, "excess events must be dropped, got %d", len(got))
	assert.NotEmpty(t, got)
}
