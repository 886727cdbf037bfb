package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/graciacafe/cafe-orders/internal/auth"
	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/redisx"
)

type OrdersHandler struct {
	Service   *cafe.Service
	Repo      *cafe.Repo
	Redis     *redis.Client
	JWTSecret string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	// create boleh anonim (pesanan tanpa akun); token dipakai kalau ada
	r.Group(func(r chi.Router) {
		r.Use(auth.Optional(h.JWTSecret))
		r.Post("/orders", h.createOrder)
	})
	r.Get("/menus", h.listMenus)
	// tracking status publik, cukup tahu id pesanan (papan antrian kios)
	r.Get("/orders/{id}/status", h.orderStatus)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Patch("/orders/{id}/status", h.changeStatus)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
		r.Post("/orders/{id}/payment/confirm", h.confirmPayment)
		r.Delete("/orders/{id}", h.hardDelete)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in cafe.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Kind: "validation", Error: "invalid json"})
		return
	}
	// user_id selalu dari sesi, bukan dari body
	in.UserID = ""
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		in.UserID = actor.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CreateOrder(ctx, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	f := cafe.Filter{
		Status:        cafe.Status(r.URL.Query().Get("status")),
		PaymentStatus: cafe.PaymentStatus(r.URL.Query().Get("payment_status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, errBody{Kind: "validation", Error: "unknown status filter"})
		return
	}
	// customer hanya melihat pesanannya sendiri, apa pun query-nya
	if actor.IsAdmin() {
		f.UserID = r.URL.Query().Get("user_id")
	} else {
		f.UserID = actor.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Service.ListOrders(ctx, f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !actor.IsAdmin() && o.UserID != actor.ID {
		writeErr(w, cafe.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var body struct {
		Status cafe.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Kind: "validation", Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.ChangeStatus(ctx, chi.URLParam(r, "id"), body.Status, actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Kind: "validation", Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CancelOrder(ctx, chi.URLParam(r, "id"), body.Reason, actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.ConfirmPayment(ctx, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) hardDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.HardDelete(ctx, chi.URLParam(r, "id"), actor); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cache-first: Redis diisi publisher tiap mutasi, fallback ke DB lalu
// isi ulang cache.
func (h *OrdersHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, key).Result(); err == nil && cached != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(cached))
			return
		}
	}

	st, err := h.Repo.GetOrderStatus(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	body := map[string]cafe.Status{"status": st}
	if h.Redis != nil {
		b, _ := json.Marshal(body)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *OrdersHandler) listMenus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	menus, err := h.Repo.ListMenus(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menus)
}
