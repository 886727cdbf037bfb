package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Pusher adalah delivery out-of-band (web push dsb). Best-effort murni:
// kegagalan ditelan di boundary pemanggil.
type Pusher interface {
	Push(ctx context.Context, userID, title, message, tag, url string) error
}

// LogPusher hanya mencatat; pengganti layanan push sampai ada integrasi.
type LogPusher struct{}

func (LogPusher) Push(ctx context.Context, userID, title, message, tag, url string) error {
	log.Debug().Str("user_id", userID).Str("tag", tag).Str("title", title).Msg("push (stub)")
	return nil
}
