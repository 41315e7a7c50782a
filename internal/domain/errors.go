package domain

import "errors"

var (
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer full name is required")
	// Ошибка отсутствующей cédula покупателя.
	ErrCustomerCedulaRequired = errors.New("customer cedula is required")
	// Ошибка оформления пустой корзины.
	ErrCartEmpty = errors.New("cart must contain at least one line")
	// Ошибка строки корзины с количеством < 1.
	ErrCartQtyInvalid = errors.New("cart line qty must be at least one")
	// Ошибка несоответствия итога продажи сумме строк.
	ErrTotalMismatch = errors.New("sale total does not match cart lines sum")
	// Ошибка неположительного курса обмена.
	ErrExchangeRateInvalid = errors.New("exchange rate must be positive")

	// Ошибки каталога.
	ErrProductIMEIRequired  = errors.New("product imei is required")
	ErrProductNameRequired  = errors.New("product name is required")
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	ErrProductStockNegative = errors.New("product stock must be non-negative")
	// ErrProductNotFound возвращается, когда каталог не знает такой IMEI или имя.
	ErrProductNotFound = errors.New("product not found")

	// Ошибки жизненного цикла оформления.
	// ErrNoPendingReview — подтверждать или отменять нечего: снимок не собран.
	ErrNoPendingReview = errors.New("no sale submission is pending review")
	// ErrSubmissionInFlight — подтверждение уже выполняется; повторное игнорируется.
	ErrSubmissionInFlight = errors.New("sale submission already in flight")
	// ErrNothingToAcknowledge — нет принятой продажи, которую можно закрыть.
	ErrNothingToAcknowledge = errors.New("no accepted sale to acknowledge")
	// ErrDraftLocked — черновик нельзя менять, пока идёт ревью или отправка.
	ErrDraftLocked = errors.New("draft is locked while checkout is in progress")
	// ErrUnknownProvider — выбран провайдер вне закрытого перечня.
	ErrUnknownProvider = errors.New("unknown financing provider")

	// ErrSaleRejected — внешний реестр отклонил продажу (бизнес-отказ, не транспорт).
	ErrSaleRejected = errors.New("sale rejected by ledger")
	// ErrSaleNotFound возвращается, если записи о продаже нет в реестре.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrDuplicateSubmission — снимок с таким SubmissionID уже записан.
	ErrDuplicateSubmission = errors.New("submission already recorded")

	// Ошибки идемпотентности (см. IdempotencyRepository).
	ErrIdempotencyKeyRequired      = errors.New("idempotency key is required")
	ErrIdempotencyHashRequired     = errors.New("idempotency request hash is required")
	ErrIdempotencyHashMismatch     = errors.New("idempotency request hash mismatch")
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	ErrIdempotencyKeyNotFound      = errors.New("idempotency key not found")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, является ли ошибка отказом "не зарегистрировано"
// (в отличие от транспортного сбоя, который оборачивается другими ошибками).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrSaleNotFound)
}
