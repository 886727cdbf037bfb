package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/graciacafe/cafe-orders/internal/auth"
	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/stats"
)

type StatsHandler struct {
	Aggregator *stats.Aggregator
	JWTSecret  string
}

func (h *StatsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/stats/sales", h.sales)
	})
}

func (h *StatsHandler) sales(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	if !actor.IsAdmin() {
		writeErr(w, cafe.ErrForbidden)
		return
	}

	window := stats.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = stats.WindowToday
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report, err := h.Aggregator.Report(ctx, window)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
