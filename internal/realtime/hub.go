package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/graciacafe/cafe-orders/internal/cafe"
)

type Kind string

const (
	KindOrder        Kind = "order"
	KindNotification Kind = "notification"
)

// Event adalah mutasi yang didorong ke klien. Payload di envelope bisa
// parsial; klien diharapkan re-fetch record lengkap lewat API.
type Event struct {
	Kind    Kind          `json:"kind"`
	OrderID string        `json:"order_id"`
	UserID  string        `json:"user_id,omitempty"` // pemilik order / addressee notifikasi
	Env     cafe.Envelope `json:"envelope"`
}

type subKey struct {
	role cafe.Role
	id   string
}

// Hub membagikan event ke subscriber berdasarkan role: admin melihat
// semua mutasi order, customer hanya order miliknya sendiri. Notifikasi
// hanya sampai ke addressee-nya. Pengiriman at-most-once: subscriber
// yang lambat kehilangan event, tidak ada replay.
type Hub struct {
	mu   sync.Mutex
	subs map[subKey]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: map[subKey]*Subscription{}}
}

const subBuffer = 32

// Subscribe mendaftarkan satu langganan per (role, identity). Langganan
// lama untuk pasangan yang sama ditutup dulu.
func (h *Hub) Subscribe(role cafe.Role, identity string) *Subscription {
	key := subKey{role: role, id: identity}

	h.mu.Lock()
	prev := h.subs[key]
	sub := &Subscription{
		C:   make(chan Event, subBuffer),
		hub: h,
		key: key,
	}
	h.subs[key] = sub
	h.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return sub
}

// Dispatch mengirim event ke subscriber yang berhak, non-blocking.
func (h *Hub) Dispatch(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, sub := range h.subs {
		if !wants(key, ev) {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			// channel penuh: drop, klien re-fetch saat reconnect
		}
	}
}

func wants(key subKey, ev Event) bool {
	switch ev.Kind {
	case KindOrder:
		if key.role == cafe.RoleAdmin {
			return true
		}
		return ev.UserID != "" && ev.UserID == key.id
	case KindNotification:
		return ev.UserID == key.id
	}
	return false
}

// Run mendengarkan channel pub/sub Redis dan meneruskan ke subscriber.
// Berhenti saat ctx selesai.
func (h *Hub) Run(ctx context.Context, rdb *redis.Client) error {
	ps := rdb.Subscribe(ctx, cafe.ChannelOrderEvents, cafe.ChannelNotificationEvents)
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env cafe.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Error().Err(err).Str("channel", msg.Channel).Msg("decode realtime envelope")
				continue
			}
			kind := KindOrder
			if msg.Channel == cafe.ChannelNotificationEvents {
				kind = KindNotification
			}
			var meta struct {
				OrderID string `json:"order_id"`
				UserID  string `json:"user_id"`
			}
			_ = json.Unmarshal(env.Payload, &meta)
			h.Dispatch(Event{
				Kind:    kind,
				OrderID: meta.OrderID,
				UserID:  meta.UserID,
				Env:     env,
			})
		}
	}
}

// Subscription adalah handle langganan yang bisa dibatalkan. Cancel
// idempoten: aman dipanggil dua kali, setelah itu tidak ada event baru.
type Subscription struct {
	C    chan Event
	hub  *Hub
	key  subKey
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if s.hub.subs[s.key] == s {
			delete(s.hub.subs, s.key)
		}
		s.hub.mu.Unlock()
		close(s.C)
	})
}
