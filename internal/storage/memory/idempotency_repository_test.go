package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func TestIdempotencyCreateProcessing(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	record, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing status, got %s", record.Status)
	}

	// Повторная регистрация того же ключа сообщает о существующей записи.
	existing, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected ErrIdempotencyKeyAlreadyExists, got %v", err)
	}
	if existing.Key != "sub-1" {
		t.Fatalf("expected existing record, got %+v", existing)
	}
}

func TestIdempotencyCreateProcessing_HashMismatch(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.CreateProcessing("sub-1", "hash-2", time.Time{}); !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected ErrIdempotencyHashMismatch, got %v", err)
	}
}

func TestIdempotencyFailedRecordAllowsRetry(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.MarkFailed("sub-1", []byte("ledger down")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	// Failed-запись с тем же хэшем возвращается в processing без ошибки.
	record, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{})
	if err != nil {
		t.Fatalf("expected retry to be allowed, got %v", err)
	}
	if record.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing after retry, got %s", record.Status)
	}
}

func TestIdempotencyMarkDoneStoresResponse(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("sub-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.MarkDone("sub-1", []byte(`{"sale_id":"VEN-1"}`)); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	record, err := repo.Get("sub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Status != domain.IdempotencyStatusDone {
		t.Fatalf("expected done, got %s", record.Status)
	}
	if string(record.ResponseBody) != `{"sale_id":"VEN-1"}` {
		t.Fatalf("unexpected response body %q", record.ResponseBody)
	}
}

func TestIdempotencyDeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	past := time.Now().UTC().Add(-time.Hour)

	if _, err := repo.CreateProcessing("old", "h", past); err != nil {
		t.Fatalf("seed old: %v", err)
	}
	if _, err := repo.CreateProcessing("fresh", "h", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	removed, err := repo.DeleteExpired(time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := repo.Get("old"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected old key gone, got %v", err)
	}
	if _, err := repo.Get("fresh"); err != nil {
		t.Fatalf("fresh key should remain: %v", err)
	}
}

func TestIdempotencyValidation(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("", "h", time.Time{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected key required, got %v", err)
	}
	if _, err := repo.CreateProcessing("k", " ", time.Time{}); !errors.Is(err, domain.ErrIdempotencyHashRequired) {
		t.Fatalf("expected hash required, got %v", err)
	}
	if err := repo.MarkDone("missing", nil); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected key not found, got %v", err)
	}
}
