package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	kafkax "github.com/graciacafe/cafe-orders/internal/kafka"
	"github.com/graciacafe/cafe-orders/internal/redisx"
)

// Publisher meneruskan envelope mutasi ke dua arah: Kafka (dikonsumsi
// notifier) dan Redis pub/sub (dikonsumsi hub realtime). Dipakai service
// sebagai side effect best-effort.
type Publisher struct {
	Producers map[string]*kafkax.Producer // keyed by topic
	Redis     *redis.Client
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, env cafe.Envelope) error {
	topic := cafe.TopicFor(env.EventType)
	if topic == "" {
		return fmt.Errorf("no topic for event type %q", env.EventType)
	}
	b := kafkax.MustMarshal(env)

	if prod, ok := p.Producers[topic]; ok {
		prod.Publish(cafe.PartitionKey(env.CorrelationID), b,
			kafkago.Header{Key: "x-event-type", Value: []byte(env.EventType)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	if p.Redis != nil {
		p.cacheStatus(ctx, env)
		if err := p.Redis.Publish(ctx, cafe.ChannelOrderEvents, b).Err(); err != nil {
			return fmt.Errorf("redis publish: %w", err)
		}
	}
	return nil
}

// cacheStatus menyegarkan cache status ringkas yang dibaca endpoint
// tracking publik. Best-effort, gagal cuma dicatat.
func (p *Publisher) cacheStatus(ctx context.Context, env cafe.Envelope) {
	st, ok := StatusForEvent(env)
	if !ok || env.CorrelationID == "" {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, env.CorrelationID)
	body := kafkax.MustMarshal(map[string]cafe.Status{"status": st})
	if err := p.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		log.Error().Err(err).Str("order_id", env.CorrelationID).Msg("status cache set")
	}
}

// StatusForEvent memetakan envelope ke status order terbaru.
// ok=false berarti event tidak mengubah status.
func StatusForEvent(env cafe.Envelope) (cafe.Status, bool) {
	switch env.EventType {
	case cafe.EventOrderCreated:
		return cafe.StatusPending, true
	case cafe.EventStatusChanged:
		pl, err := kafkax.UnwrapPayload[cafe.StatusChangedPayload](env.Payload)
		if err != nil {
			return "", false
		}
		return pl.NewStatus, true
	case cafe.EventOrderCancelled:
		return cafe.StatusCancelled, true
	}
	return "", false
}
