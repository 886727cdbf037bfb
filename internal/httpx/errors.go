package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/graciacafe/cafe-orders/internal/cafe"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// writeErr memetakan taxonomy error domain ke status HTTP. UI diharapkan
// menampilkan jenis errornya, bukan pesan generik.
func writeErr(w http.ResponseWriter, err error) {
	var ve *cafe.ValidationError
	var it *cafe.InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errBody{Kind: "validation", Error: ve.Error()})
	case errors.As(err, &it):
		writeJSON(w, http.StatusConflict, errBody{Kind: "invalid_transition", Error: it.Error()})
	case errors.Is(err, cafe.ErrStaleState):
		writeJSON(w, http.StatusConflict, errBody{Kind: "stale_state", Error: err.Error()})
	case errors.Is(err, cafe.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errBody{Kind: "forbidden", Error: err.Error()})
	case errors.Is(err, cafe.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{Kind: "not_found", Error: err.Error()})
	default:
		log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errBody{Kind: "internal", Error: "internal error"})
	}
}
