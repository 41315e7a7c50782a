package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// salesLedgerInMemory — in-memory реестр продаж для разработки и тестов.
// Повторная запись одного SubmissionID возвращает уже существующую запись.
type salesLedgerInMemory struct {
	mu            sync.RWMutex
	now           func() time.Time
	outbox        domain.OutboxRepository
	records       []domain.SaleReceipt
	bySubmission  map[string]int
	lastUnixStamp int64
}

// NewSalesLedger создаёт пустой реестр. outbox опционален: при nil события
// о записанных продажах просто не ставятся в очередь.
func NewSalesLedger(outbox domain.OutboxRepository) *salesLedgerInMemory {
	return &salesLedgerInMemory{
		now:          func() time.Time { return time.Now().UTC() },
		outbox:       outbox,
		bySubmission: make(map[string]int),
	}
}

// SetClock подменяет источник времени (для тестов идентификаторов продаж).
func (l *salesLedgerInMemory) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Record записывает снимок продажи, назначает идентификатор VEN-<unix> и
// возвращает итоговую запись со ссылкой на чек.
func (l *salesLedgerInMemory) Record(_ context.Context, submission domain.SaleSubmission) (domain.SaleRecord, error) {
	if submission.SubmissionID == "" {
		return domain.SaleRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if errs := submission.ValidateInvariants(); len(errs) > 0 {
		return domain.SaleRecord{}, fmt.Errorf("%w: %v", domain.ErrSaleRejected, errs[0])
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if idx, ok := l.bySubmission[submission.SubmissionID]; ok {
		return l.records[idx].Record, nil
	}

	recordedAt := l.now()
	record := domain.SaleRecord{
		SaleID:        l.nextSaleID(recordedAt),
		RecordedAt:    recordedAt,
		Client:        submission.Customer.FullName,
		Cedula:        submission.Customer.Cedula,
		ItemsSummary:  submission.ItemsSummary(),
		TotalUSD:      submission.TotalUSD,
		TotalBs:       submission.TotalBs(),
		PaymentMethod: string(submission.Financing),
		Financed:      submission.Financing.Financed(),
	}
	record.ReceiptURL = "/api/receipts/" + record.SaleID

	l.bySubmission[submission.SubmissionID] = len(l.records)
	l.records = append(l.records, domain.SaleReceipt{Record: record, Submission: submission})

	l.enqueueRecorded(record, submission)
	return record, nil
}

// History возвращает продажи от новых к старым.
func (l *salesLedgerInMemory) History(_ context.Context) ([]domain.SaleRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.SaleRecord, 0, len(l.records))
	for i := len(l.records) - 1; i >= 0; i-- {
		result = append(result, l.records[i].Record)
	}
	return result, nil
}

// Receipt возвращает запись вместе с исходным снимком для рендера чека.
func (l *salesLedgerInMemory) Receipt(_ context.Context, saleID string) (domain.SaleReceipt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, receipt := range l.records {
		if receipt.Record.SaleID == saleID {
			return receipt, nil
		}
	}
	return domain.SaleReceipt{}, domain.ErrSaleNotFound
}

// nextSaleID строит идентификатор вида VEN-<unix>, сдвигая секунду вперёд
// при коллизии двух продаж в одну секунду.
func (l *salesLedgerInMemory) nextSaleID(at time.Time) string {
	stamp := at.Unix()
	if stamp <= l.lastUnixStamp {
		stamp = l.lastUnixStamp + 1
	}
	l.lastUnixStamp = stamp
	return fmt.Sprintf("VEN-%d", stamp)
}

func (l *salesLedgerInMemory) enqueueRecorded(record domain.SaleRecord, submission domain.SaleSubmission) {
	if l.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"sale_id":       record.SaleID,
		"submission_id": submission.SubmissionID,
		"client":        record.Client,
		"total_usd":     record.TotalUSD,
		"total_bs":      record.TotalBs,
		"financed":      record.Financed,
		"recorded_at":   record.RecordedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}

	_, _ = l.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "sale",
		AggregateID:   record.SaleID,
		EventType:     "SaleRecorded",
		Payload:       payload,
	})
}

var _ domain.SalesLedger = (*salesLedgerInMemory)(nil)
