package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/graciacafe/cafe-orders/internal/cafe"
)

type contextKey string

const actorKey contextKey = "actor"

// Middleware memvalidasi bearer token dan menaruh Actor di context.
// Semua endpoint inti mensyaratkan sesi; tidak ada state auth global.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}
			claims, err := ValidateToken(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			actor := cafe.Actor{ID: claims.UserID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// Optional memasang Actor kalau ada token valid, tapi tetap meneruskan
// request anonim. Dipakai endpoint create order: pesanan boleh tanpa akun.
func Optional(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if claims, err := ValidateToken(token, secret); err == nil {
					actor := cafe.Actor{ID: claims.UserID, Role: claims.Role}
					r = r.WithContext(WithActor(r.Context(), actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, actor cafe.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom mengambil Actor dari context; ok=false kalau request lolos
// tanpa middleware (mis. endpoint publik).
func ActorFrom(ctx context.Context) (cafe.Actor, bool) {
	a, ok := ctx.Value(actorKey).(cafe.Actor)
	return a, ok
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie("Authorization"); err == nil {
		return cookie.Value
	}
	return ""
}
