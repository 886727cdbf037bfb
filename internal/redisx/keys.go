package redisx

import "time"

const (
	// Dedup pemrosesan event di notifier: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache ringkas status order: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
