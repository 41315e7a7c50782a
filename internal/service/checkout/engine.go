// Package checkout содержит машину состояний жизненного цикла продажи:
// от пустого черновика через сборку корзины и ревью до записи во внешний
// реестр. Все ошибки здесь восстановимы — фатального пути у оформления нет.
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/financing"
)

// State описывает фазу жизненного цикла черновика продажи.
type State string

const (
	// StateIdle — пустой черновик, корзина без строк.
	StateIdle State = "idle"
	// StateBuilding — в корзине есть хотя бы одна строка.
	StateBuilding State = "building"
	// StateReviewPending — снимок собран и ждёт подтверждения клерка.
	StateReviewPending State = "review_pending"
	// StateSubmitting — поход во внешний реестр выполняется.
	StateSubmitting State = "submitting"
	// StateSucceeded — реестр принял продажу; чек ждёт, пока клерк его закроет.
	StateSucceeded State = "succeeded"
)

// defaultRate используется, пока настройки не загружены (как стартовое
// значение конфигурационного листа оригинальной точки).
var defaultRate = decimal.NewFromFloat(37.5)

const idempotencyTTL = 24 * time.Hour

// Snapshot — атомарный срез черновика для отображения.
type Snapshot struct {
	State        State
	Cart         domain.Cart
	Customer     domain.Customer
	Financing    domain.FinancingProvider
	Observations string
	ExchangeRate decimal.Decimal
	TotalUSD     decimal.Decimal
	TotalBs      decimal.Decimal
	Plan         domain.FinancingPlan
}

// Engine владеет черновиком продажи и прогоняет его по состояниям.
// Черновик принадлежит ровно одному Engine; внешние вызовы (каталог,
// настройки, реестр) выполняются без удержания мьютекса, поэтому
// несвязанные операции не блокируются отправкой.
type Engine struct {
	catalog  domain.CatalogService
	settings domain.SettingsService
	ledger   domain.SalesLedger
	idem     domain.IdempotencyRepository

	logger  *log.Entry
	metrics *metrics.SaleMetrics

	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	state        State
	cart         domain.Cart
	customer     domain.Customer
	financing    domain.FinancingProvider
	observations string
	rate         decimal.Decimal
	pending      *domain.SaleSubmission
	receipt      *domain.SaleRecord
}

// Option настраивает Engine.
type Option func(*Engine)

// WithLogger задаёт logger движка.
func WithLogger(logger *log.Entry) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics задаёт метрики; nil отключает их (для тестов).
func WithMetrics(m *metrics.SaleMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock подменяет источник времени (для тестов графика платежей).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator подменяет генератор SubmissionID.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithDefaultRate задаёт стартовый курс до загрузки настроек.
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(e *Engine) {
		if rate.IsPositive() {
			e.rate = rate
		}
	}
}

// NewEngine создаёт движок с пустым черновиком в состоянии Idle.
func NewEngine(
	catalog domain.CatalogService,
	settings domain.SettingsService,
	ledger domain.SalesLedger,
	idem domain.IdempotencyRepository,
	options ...Option,
) *Engine {
	e := &Engine{
		catalog:   catalog,
		settings:  settings,
		ledger:    ledger,
		idem:      idem,
		logger:    log.WithField("component", "checkout"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		state:     StateIdle,
		financing: domain.FinancingNone,
		rate:      defaultRate,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// LoadSettings подтягивает курс обмена. Сбой загрузки не ломает черновик:
// движок продолжает жить на прежнем (или стартовом) курсе.
func (e *Engine) LoadSettings(ctx context.Context) error {
	rate, err := e.settings.ExchangeRate(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("failed to load exchange rate, keeping previous value")
		return fmt.Errorf("load settings: %w", err)
	}
	if !rate.IsPositive() {
		e.logger.WithField("rate", rate).Warn("settings returned non-positive rate, keeping previous value")
		return domain.ErrExchangeRateInvalid
	}

	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
	return nil
}

// ExchangeRate возвращает курс, по которому сейчас считается черновик.
func (e *Engine) ExchangeRate() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// SaveExchangeRate сохраняет новый курс в настройках и, если запись прошла,
// применяет его к черновику. Ошибка сохранения черновик не трогает.
func (e *Engine) SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return domain.ErrExchangeRateInvalid
	}
	if err := e.settings.SaveExchangeRate(ctx, rate); err != nil {
		e.logger.WithError(err).Warn("failed to persist exchange rate")
		return fmt.Errorf("save exchange rate: %w", err)
	}

	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordRateUpdate()
	}
	return nil
}

// AddProductByTerm ищет товар в каталоге и кладёт его в корзину.
// Поиск выполняется без блокировки черновика; неудачный поиск оставляет
// состояние неизменным. Если к моменту ответа черновик ушёл в ревью или
// отправку, результат отбрасывается с ErrDraftLocked.
func (e *Engine) AddProductByTerm(ctx context.Context, term string) (domain.Product, error) {
	product, err := e.catalog.ProductByTerm(ctx, term)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			e.recordLookup("not_found")
			return domain.Product{}, err
		}
		e.recordLookup("error")
		e.logger.WithError(err).WithField("term", term).Warn("catalog lookup failed")
		return domain.Product{}, fmt.Errorf("catalog lookup: %w", err)
	}
	e.recordLookup("found")

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateBuilding {
		return domain.Product{}, domain.ErrDraftLocked
	}

	e.cart = e.cart.Add(product)
	e.state = StateBuilding
	return product, nil
}

// RemoveProduct убирает строку корзины целиком. Пустая корзина возвращает
// черновик в Idle.
func (e *Engine) RemoveProduct(imei string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateBuilding {
		return domain.ErrDraftLocked
	}

	e.cart = e.cart.Remove(imei)
	if e.cart.IsEmpty() {
		e.state = StateIdle
	}
	return nil
}

// SetCustomer обновляет данные покупателя в черновике.
func (e *Engine) SetCustomer(customer domain.Customer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateBuilding {
		return domain.ErrDraftLocked
	}
	e.customer = customer
	return nil
}

// SetFinancing выбирает рассрочного провайдера из закрытого перечня.
func (e *Engine) SetFinancing(provider domain.FinancingProvider) error {
	if !provider.Valid() {
		return domain.ErrUnknownProvider
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateBuilding {
		return domain.ErrDraftLocked
	}
	e.financing = provider
	return nil
}

// SetObservations сохраняет свободный комментарий к продаже.
func (e *Engine) SetObservations(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateBuilding {
		return domain.ErrDraftLocked
	}
	e.observations = text
	return nil
}

// Snapshot возвращает атомарный срез черновика вместе с пересчитанным
// планом рассрочки.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.cart.TotalUSD()
	return Snapshot{
		State:        e.state,
		Cart:         e.cart.Clone(),
		Customer:     e.customer,
		Financing:    e.financing,
		Observations: e.observations,
		ExchangeRate: e.rate,
		TotalUSD:     total,
		TotalBs:      total.Mul(e.rate),
		Plan:         financing.ComputePlan(total, e.financing, e.rate, e.now()),
	}
}

// State возвращает текущее состояние машины.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RequestCheckout собирает снимок продажи и переводит черновик в ревью.
// Нарушенные предусловия оставляют состояние Building и возвращаются как
// валидационная ошибка для пользователя.
func (e *Engine) RequestCheckout() (domain.SaleSubmission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateIdle, StateBuilding:
		// допустимо: пустая корзина отсеется валидацией ниже
	case StateReviewPending:
		return *e.pending, nil
	default:
		return domain.SaleSubmission{}, domain.ErrDraftLocked
	}

	now := e.now()
	plan := financing.ComputePlan(e.cart.TotalUSD(), e.financing, e.rate, now)
	submission, err := AssembleSale(e.newID(), e.customer, e.cart, e.rate, e.financing, plan, e.observations, now)
	if err != nil {
		return domain.SaleSubmission{}, err
	}

	e.pending = &submission
	e.state = StateReviewPending
	if e.metrics != nil {
		e.metrics.RecordCheckoutRequested()
	}
	return submission, nil
}

// CancelReview отбрасывает собранный снимок; корзина остаётся нетронутой.
func (e *Engine) CancelReview() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReviewPending {
		return domain.ErrNoPendingReview
	}

	e.pending = nil
	e.state = StateBuilding
	if e.metrics != nil {
		e.metrics.RecordCheckoutCanceled()
	}
	return nil
}

// Confirm отправляет собранный снимок во внешний реестр. Для одного
// черновика допускается одна отправка за раз: повторный Confirm во время
// полёта отклоняется с ErrSubmissionInFlight, а не ставится в очередь.
// Любая неудача (транспорт или бизнес-отказ) возвращает черновик в ревью
// нетронутым; успех очищает черновик и сохраняет чек до Acknowledge.
func (e *Engine) Confirm(ctx context.Context) (domain.SaleRecord, error) {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return domain.SaleRecord{}, domain.ErrSubmissionInFlight
	}
	if e.state != StateReviewPending || e.pending == nil {
		e.mu.Unlock()
		return domain.SaleRecord{}, domain.ErrNoPendingReview
	}
	submission := *e.pending
	e.state = StateSubmitting
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordSaleSubmitted()
	}
	started := e.now()
	logger := e.logger.WithField("submission_id", submission.SubmissionID)

	// Идемпотентность: уже записанное подтверждение возвращает сохранённый
	// чек вместо повторного похода в реестр.
	if record, ok := e.replayCompleted(submission, logger); ok {
		e.completeSale(record)
		return record, nil
	}

	record, err := e.ledger.Record(ctx, submission)
	if err != nil {
		e.failSubmission(submission, logger, err)
		if errors.Is(err, domain.ErrSaleRejected) {
			return domain.SaleRecord{}, err
		}
		return domain.SaleRecord{}, fmt.Errorf("record sale: %w", err)
	}

	if e.idem != nil {
		if body, marshalErr := json.Marshal(record); marshalErr == nil {
			if markErr := e.idem.MarkDone(submission.SubmissionID, body); markErr != nil {
				logger.WithError(markErr).Warn("failed to mark submission done")
			}
		}
	}

	e.completeSale(record)
	if e.metrics != nil {
		e.metrics.RecordSaleCompleted()
		e.metrics.RecordSubmitDuration(e.now().Sub(started))
	}
	logger.WithField("sale_id", record.SaleID).Info("продажа записана в реестр")
	return record, nil
}

// Acknowledge закрывает экран успешной продажи и начинает новый черновик.
func (e *Engine) Acknowledge() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSucceeded {
		return domain.ErrNothingToAcknowledge
	}

	e.receipt = nil
	e.state = StateIdle
	return nil
}

// LastReceipt возвращает чек последней принятой продажи, пока клерк его
// не закрыл.
func (e *Engine) LastReceipt() (domain.SaleRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.receipt == nil {
		return domain.SaleRecord{}, false
	}
	return *e.receipt, true
}

// History возвращает продажи из реестра от новых к старым.
func (e *Engine) History(ctx context.Context) ([]domain.SaleRecord, error) {
	records, err := e.ledger.History(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("failed to load sales history")
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

// replayCompleted регистрирует попытку в журнале идемпотентности и, если
// снимок уже записан, возвращает сохранённый чек.
func (e *Engine) replayCompleted(submission domain.SaleSubmission, logger *log.Entry) (domain.SaleRecord, bool) {
	if e.idem == nil {
		return domain.SaleRecord{}, false
	}

	existing, err := e.idem.CreateProcessing(submission.SubmissionID, submissionHash(submission), e.now().Add(idempotencyTTL))
	if err == nil {
		return domain.SaleRecord{}, false
	}
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		logger.WithError(err).Warn("idempotency registration failed, proceeding without replay")
		return domain.SaleRecord{}, false
	}
	if existing.Status != domain.IdempotencyStatusDone {
		return domain.SaleRecord{}, false
	}

	var record domain.SaleRecord
	if unmarshalErr := json.Unmarshal(existing.ResponseBody, &record); unmarshalErr != nil {
		logger.WithError(unmarshalErr).Warn("stored idempotency response is unreadable")
		return domain.SaleRecord{}, false
	}
	logger.WithField("sale_id", record.SaleID).Info("submission already recorded, replaying stored receipt")
	return record, true
}

// failSubmission возвращает черновик в ревью после неудачной отправки.
func (e *Engine) failSubmission(submission domain.SaleSubmission, logger *log.Entry, cause error) {
	if e.idem != nil {
		if markErr := e.idem.MarkFailed(submission.SubmissionID, []byte(cause.Error())); markErr != nil &&
			!errors.Is(markErr, domain.ErrIdempotencyKeyNotFound) {
			logger.WithError(markErr).Warn("failed to mark submission failed")
		}
	}

	e.mu.Lock()
	e.state = StateReviewPending
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordSaleFailed()
	}
	logger.WithError(cause).Warn("sale submission failed, draft preserved for retry")
}

// completeSale фиксирует принятый реестром чек и начинает новый черновик.
func (e *Engine) completeSale(record domain.SaleRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart = nil
	e.customer = domain.Customer{}
	e.financing = domain.FinancingNone
	e.observations = ""
	e.pending = nil
	e.receipt = &record
	e.state = StateSucceeded
}

func (e *Engine) recordLookup(result string) {
	if e.metrics != nil {
		e.metrics.RecordLookup(result)
	}
}

// submissionHash считает стабильный хэш снимка для журнала идемпотентности.
func submissionHash(submission domain.SaleSubmission) string {
	data, err := json.Marshal(submission)
	if err != nil {
		return submission.SubmissionID
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
