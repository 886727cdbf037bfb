package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/graciacafe/cafe-orders/internal/auth"
	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	Hub       *realtime.Hub
	Service   *cafe.Service
	JWTSecret string
}

func (h *WSHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/ws", h.serve)
	})
}

// Pesan keluar ke klien. Untuk event order, record lengkap (order + item
// + nama menu) di-fetch ulang di sini: payload event bisa parsial dan
// tidak dipercaya begitu saja.
type wsMessage struct {
	Kind  realtime.Kind `json:"kind"`
	Event cafe.Envelope `json:"event"`
	Order *cafe.Order   `json:"order,omitempty"`
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// satu langganan aktif per (role, identity); Subscribe menutup yang lama
	sub := h.Hub.Subscribe(actor.Role, actor.ID)
	defer sub.Cancel()

	// reader hanya untuk mendeteksi klien menutup koneksi
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			msg := wsMessage{Kind: ev.Kind, Event: ev.Env}
			if ev.Kind == realtime.KindOrder {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				o, err := h.Service.GetOrder(ctx, ev.OrderID)
				cancel()
				switch {
				case err == nil:
					msg.Order = o
				case errors.Is(err, cafe.ErrNotFound):
					// order di-hard-delete; kirim event-nya saja
				default:
					log.Warn().Err(err).Str("order_id", ev.OrderID).Msg("refetch order for ws")
					continue
				}
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
