package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/graciacafe/cafe-orders/internal/auth"
	"github.com/graciacafe/cafe-orders/internal/cafe"
)

type NotificationsHandler struct {
	Repo      *cafe.Repo
	JWTSecret string
}

func (h *NotificationsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/notifications", h.list)
		r.Patch("/notifications/{id}/read", h.markRead)
	})
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListNotifications(ctx, actor.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Repo.MarkNotificationRead(ctx, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
