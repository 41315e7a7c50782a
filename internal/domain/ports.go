package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogService описывает поиск товара во внешнем инвентаре.
type CatalogService interface {
	// ProductByTerm ищет товар по точному IMEI либо по подстроке имени
	// (подстрока учитывается от четырёх символов). Возвращает
	// ErrProductNotFound, если совпадений нет; транспортные сбои
	// оборачиваются другими ошибками.
	ProductByTerm(ctx context.Context, term string) (Product, error)
}

// SettingsService хранит курс обмена и прочие настройки точки продаж.
type SettingsService interface {
	// ExchangeRate возвращает текущий курс Bs/$.
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
	// SaveExchangeRate сохраняет новый курс.
	SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error
}

// SalesLedger — внешний реестр продаж (персистентность и чеки).
type SalesLedger interface {
	// Record записывает снимок продажи и возвращает итоговую запись со
	// ссылкой на чек. Повторный вызов с тем же SubmissionID не создаёт
	// второй записи, а возвращает уже существующую.
	Record(ctx context.Context, submission SaleSubmission) (SaleRecord, error)
	// History возвращает продажи от новых к старым.
	History(ctx context.Context) ([]SaleRecord, error)
	// Receipt возвращает запись вместе с исходным снимком для рендера чека.
	Receipt(ctx context.Context, saleID string) (SaleReceipt, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние подтверждений по SubmissionID.
type IdempotencyRepository interface {
	// CreateProcessing регистрирует новую попытку. Для уже существующего
	// ключа возвращает текущую запись и ErrIdempotencyKeyAlreadyExists;
	// запись в статусе failed при совпадении хэша переводится обратно в
	// processing, чтобы разрешить повтор.
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte) error
	MarkFailed(key string, responseBody []byte) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
