package cafe

const (
	TopicOrderCreated     = "cafe.order.created"
	TopicStatusChanged    = "cafe.order.status_changed"
	TopicOrderCancelled   = "cafe.order.cancelled"
	TopicPaymentConfirmed = "cafe.order.payment_confirmed"
)

// Channel pub/sub Redis untuk hub realtime (bukan Kafka).
const (
	ChannelOrderEvents        = "cafe:rt:orders"
	ChannelNotificationEvents = "cafe:rt:notifications"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

func TopicFor(eventType string) string {
	switch eventType {
	case EventOrderCreated:
		return TopicOrderCreated
	case EventStatusChanged:
		return TopicStatusChanged
	case EventOrderCancelled:
		return TopicOrderCancelled
	case EventPaymentConfirmed:
		return TopicPaymentConfirmed
	}
	return ""
}

// OrderTopics: semua topic order yang dikonsumsi notifier.
func OrderTopics() []string {
	return []string{TopicOrderCreated, TopicStatusChanged, TopicOrderCancelled, TopicPaymentConfirmed}
}
