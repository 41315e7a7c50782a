package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

// helper для валидного снимка продажи.
func makeSubmission(submissionID string) domain.SaleSubmission {
	cart := domain.Cart{}.Add(domain.Product{
		IMEI:     "356938035643809",
		Name:     "Samsung Galaxy A15",
		PriceUSD: decimal.NewFromInt(180),
		Stock:    10,
	})
	return domain.SaleSubmission{
		SubmissionID: submissionID,
		Customer:     domain.Customer{FullName: "Juan Pérez", Cedula: "V-12345678", Phone: "58412000000"},
		Items:        cart,
		ExchangeRate: decimal.NewFromInt(40),
		Financing:    domain.FinancingNone,
		Plan:         domain.FinancingPlan{InitialUSD: cart.TotalUSD()},
		TotalUSD:     cart.TotalUSD(),
		Date:         time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestSalesLedgerRecord(t *testing.T) {
	outbox := memory.NewOutboxRepository()
	ledger := memory.NewSalesLedger(outbox)

	record, err := ledger.Record(context.Background(), makeSubmission("sub-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.SaleID == "" {
		t.Fatal("expected assigned sale id")
	}
	if !record.TotalBs.Equal(decimal.NewFromInt(7200)) {
		t.Fatalf("expected 7200 Bs, got %s", record.TotalBs)
	}
	if record.ItemsSummary != "1x Samsung Galaxy A15" {
		t.Fatalf("unexpected items summary %q", record.ItemsSummary)
	}
	if record.ReceiptURL != "/api/receipts/"+record.SaleID {
		t.Fatalf("unexpected receipt url %q", record.ReceiptURL)
	}

	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "SaleRecorded" {
		t.Fatalf("expected one SaleRecorded outbox event, got %+v", pending)
	}
}

func TestSalesLedgerRecord_DuplicateSubmissionReturnsExisting(t *testing.T) {
	ledger := memory.NewSalesLedger(nil)
	sub := makeSubmission("sub-dup")

	first, err := ledger.Record(context.Background(), sub)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	second, err := ledger.Record(context.Background(), sub)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}

	if first.SaleID != second.SaleID {
		t.Fatalf("duplicate submission created a second record: %s vs %s", first.SaleID, second.SaleID)
	}

	history, err := ledger.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected single history entry, got %d", len(history))
	}
}

func TestSalesLedgerHistory_MostRecentFirst(t *testing.T) {
	ledger := memory.NewSalesLedger(nil)
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	current := base
	ledger.SetClock(func() time.Time {
		current = current.Add(time.Minute)
		return current
	})

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		if _, err := ledger.Record(context.Background(), makeSubmission(id)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	history, err := ledger.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].RecordedAt.After(history[i-1].RecordedAt) {
			t.Fatalf("history is not most-recent-first: %v", history)
		}
	}
}

func TestSalesLedgerRecord_SameSecondGetsDistinctIDs(t *testing.T) {
	ledger := memory.NewSalesLedger(nil)
	fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	ledger.SetClock(func() time.Time { return fixed })

	a, err := ledger.Record(context.Background(), makeSubmission("sub-a"))
	if err != nil {
		t.Fatalf("record a: %v", err)
	}
	b, err := ledger.Record(context.Background(), makeSubmission("sub-b"))
	if err != nil {
		t.Fatalf("record b: %v", err)
	}
	if a.SaleID == b.SaleID {
		t.Fatalf("two sales share id %s", a.SaleID)
	}
}

func TestSalesLedgerReceipt(t *testing.T) {
	ledger := memory.NewSalesLedger(nil)
	record, err := ledger.Record(context.Background(), makeSubmission("sub-r"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	receipt, err := ledger.Receipt(context.Background(), record.SaleID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if receipt.Submission.SubmissionID != "sub-r" {
		t.Fatalf("receipt holds wrong submission %q", receipt.Submission.SubmissionID)
	}

	if _, err := ledger.Receipt(context.Background(), "VEN-0"); err != domain.ErrSaleNotFound {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSalesLedgerRecord_RejectsInvalidSubmission(t *testing.T) {
	ledger := memory.NewSalesLedger(nil)
	sub := makeSubmission("sub-bad")
	sub.Customer.FullName = ""

	if _, err := ledger.Record(context.Background(), sub); err == nil {
		t.Fatal("expected rejection for invalid submission")
	}
}
