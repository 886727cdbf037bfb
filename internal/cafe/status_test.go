package cafe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graciacafe/cafe-orders/internal/cafe"
)

func TestCanTransition_AllowedPath(t *testing.T) {
	allowed := [][2]cafe.Status{
		{cafe.StatusPending, cafe.StatusPreparing},
		{cafe.StatusPreparing, cafe.StatusReady},
		{cafe.StatusReady, cafe.StatusCompleted},
		{cafe.StatusPending, cafe.StatusCancelled},
	}
	for _, pair := range allowed {
		assert.True(t, cafe.CanTransition(pair[0], pair[1]), "%s -> %s should be allowed", pair[0], pair[1])
	}
}

// Closure: semua pasangan di luar tabel harus ditolak.
func TestCanTransition_Closure(t *testing.T) {
	allowed := map[[2]cafe.Status]bool{
		{cafe.StatusPending, cafe.StatusPreparing}: true,
		{cafe.StatusPreparing, cafe.StatusReady}:   true,
		{cafe.StatusReady, cafe.StatusCompleted}:   true,
		{cafe.StatusPending, cafe.StatusCancelled}: true,
	}
	for _, from := range cafe.AllStatuses {
		for _, to := range cafe.AllStatuses {
			if allowed[[2]cafe.Status{from, to}] {
				continue
			}
			assert.False(t, cafe.CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, from := range []cafe.Status{cafe.StatusCompleted, cafe.StatusCancelled} {
		require.True(t, from.Terminal())
		for _, to := range cafe.AllStatuses {
			assert.False(t, cafe.CanTransition(from, to), "no way out of %s", from)
		}
	}
}

func TestAllowedActor(t *testing.T) {
	admin := cafe.Actor{ID: "a1", Role: cafe.RoleAdmin}
	owner := cafe.Actor{ID: "c1", Role: cafe.RoleCustomer}
	stranger := cafe.Actor{ID: "c2", Role: cafe.RoleCustomer}

	tests := []struct {
		name    string
		from    cafe.Status
		to      cafe.Status
		actor   cafe.Actor
		ownerID string
		wantErr error
	}{
		{"admin_forward", cafe.StatusPending, cafe.StatusPreparing, admin, "c1", nil},
		{"admin_cancel", cafe.StatusPending, cafe.StatusCancelled, admin, "c1", nil},
		{"owner_cancel_pending", cafe.StatusPending, cafe.StatusCancelled, owner, "c1", nil},
		{"stranger_cancel", cafe.StatusPending, cafe.StatusCancelled, stranger, "c1", cafe.ErrForbidden},
		{"customer_forward", cafe.StatusPending, cafe.StatusPreparing, owner, "c1", cafe.ErrForbidden},
		{"anonymous_order_customer_cancel", cafe.StatusPending, cafe.StatusCancelled, owner, "", cafe.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cafe.AllowedActor(tt.from, tt.to, tt.actor, tt.ownerID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}

	// transisi ilegal menang atas pemeriksaan role
	err := cafe.AllowedActor(cafe.StatusPreparing, cafe.StatusCancelled, admin, "c1")
	assert.True(t, cafe.IsInvalidTransition(err))
}
