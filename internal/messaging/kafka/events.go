package kafka

import (
	"encoding/json"
	"time"
)

// Topics для Kafka.
const (
	// TopicSaleEvents — события записанных продаж для бэк-офиса.
	TopicSaleEvents = "pos.sale.events"
	// TopicDeadLetterQueue — события, которые не удалось опубликовать.
	TopicDeadLetterQueue = "pos.dlq"
)

// Типы outbox-событий.
const (
	// EventTypeSaleRecorded — продажа записана в реестр.
	EventTypeSaleRecorded = "SaleRecorded"
	// EventTypeRateUpdated — курс обмена изменён кассиром.
	EventTypeRateUpdated = "RateUpdated"
)

// Envelope — обёртка outbox-сообщения на проводе: исходный payload плюс
// метаданные агрегата и время публикации.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
