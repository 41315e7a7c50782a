package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func TestSalesRepository_PostgresRecordHistoryAndReceipt(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewSalesRepository(store)
	ctx := context.Background()

	first := sampleSubmission(uuid.NewString())
	second := sampleSubmission(uuid.NewString())
	second.Customer.FullName = "María González"
	second.Financing = domain.FinancingCashea

	recordA, err := repo.Record(ctx, first)
	if err != nil {
		t.Fatalf("record first sale: %v", err)
	}
	if recordA.SaleID == "" || recordA.ReceiptURL != "/api/receipts/"+recordA.SaleID {
		t.Fatalf("unexpected sale record: %+v", recordA)
	}
	if !recordA.TotalBs.Equal(decimal.NewFromInt(14400)) {
		t.Fatalf("unexpected bolivar total: %s", recordA.TotalBs)
	}

	recordB, err := repo.Record(ctx, second)
	if err != nil {
		t.Fatalf("record second sale: %v", err)
	}
	if recordB.SaleID == recordA.SaleID {
		t.Fatalf("sale ids must be unique, both are %s", recordA.SaleID)
	}
	if !recordB.Financed {
		t.Fatal("expected Cashea sale to be marked financed")
	}

	// Повтор того же снимка не создаёт второй записи.
	replay, err := repo.Record(ctx, first)
	if err != nil {
		t.Fatalf("replay first sale: %v", err)
	}
	if replay.SaleID != recordA.SaleID {
		t.Fatalf("replay returned different sale: %s vs %s", replay.SaleID, recordA.SaleID)
	}

	history, err := repo.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 sales in history, got %d", len(history))
	}
	if history[0].SaleID != recordB.SaleID {
		t.Fatalf("expected newest sale first, got %s", history[0].SaleID)
	}

	receipt, err := repo.Receipt(ctx, recordA.SaleID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if receipt.Submission.SubmissionID != first.SubmissionID {
		t.Fatalf("receipt submission mismatch: %s", receipt.Submission.SubmissionID)
	}
	if len(receipt.Submission.Items) != 1 || receipt.Submission.Items[0].Qty != 2 {
		t.Fatalf("submission items did not survive roundtrip: %+v", receipt.Submission.Items)
	}
}

func TestSalesRepository_PostgresEnqueuesOutboxEvent(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewSalesRepository(store)
	outbox := NewOutboxRepository(store)

	record, err := repo.Record(context.Background(), sampleSubmission(uuid.NewString()))
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending event, got %d", len(pending))
	}
	if pending[0].EventType != "SaleRecorded" || pending[0].AggregateID != record.SaleID {
		t.Fatalf("unexpected outbox event: %+v", pending[0])
	}
}

func TestSalesRepository_PostgresSameSecondSalesGetDistinctIDs(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewSalesRepository(store)

	frozen := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return frozen })

	first, err := repo.Record(context.Background(), sampleSubmission(uuid.NewString()))
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	second, err := repo.Record(context.Background(), sampleSubmission(uuid.NewString()))
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	if first.SaleID != "VEN-1773144000" {
		t.Fatalf("unexpected first sale id: %s", first.SaleID)
	}
	if second.SaleID != "VEN-1773144001" {
		t.Fatalf("expected bumped second id, got %s", second.SaleID)
	}
}

func TestSalesRepository_PostgresRejectsInvalidSubmission(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewSalesRepository(store)

	broken := sampleSubmission(uuid.NewString())
	broken.Customer.FullName = ""

	if _, err := repo.Record(context.Background(), broken); !errors.Is(err, domain.ErrSaleRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if _, err := repo.Record(context.Background(), domain.SaleSubmission{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected missing submission id error, got %v", err)
	}
}

func sampleSubmission(submissionID string) domain.SaleSubmission {
	product := domain.Product{
		IMEI:     "356938035643809",
		Name:     "Samsung Galaxy A15",
		PriceUSD: decimal.NewFromInt(180),
		Stock:    3,
	}
	return domain.SaleSubmission{
		SubmissionID: submissionID,
		Customer:     domain.Customer{FullName: "Juan Pérez", Cedula: "V-12345678"},
		Items:        domain.Cart{{Product: product, Qty: 2}},
		ExchangeRate: decimal.NewFromInt(40),
		Financing:    domain.FinancingNone,
		TotalUSD:     decimal.NewFromInt(360),
		Date:         time.Now().UTC(),
	}
}
