package health

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type stubOutboxStats struct {
	stats domain.OutboxStats
	err   error
}

func (s *stubOutboxStats) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	return msg, nil
}
func (s *stubOutboxStats) PullPending(int) ([]domain.OutboxMessage, error) { return nil, nil }
func (s *stubOutboxStats) Stats() (domain.OutboxStats, error)             { return s.stats, s.err }
func (s *stubOutboxStats) MarkSent(string) error                          { return nil }
func (s *stubOutboxStats) MarkFailed(string) error                        { return nil }

func TestOutboxBacklogChecker_Healthy(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutboxStats{
		stats: domain.OutboxStats{PendingCount: 3, OldestPendingAt: time.Now().UTC()},
	}, 500, 5*time.Minute)

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s (%s)", check.Status, check.Message)
	}
}

func TestOutboxBacklogChecker_DegradedOnBacklogSize(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutboxStats{
		stats: domain.OutboxStats{PendingCount: 501, OldestPendingAt: time.Now().UTC()},
	}, 500, 5*time.Minute)

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestOutboxBacklogChecker_DegradedOnStaleEvent(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutboxStats{
		stats: domain.OutboxStats{PendingCount: 1, OldestPendingAt: time.Now().UTC().Add(-time.Hour)},
	}, 500, 5*time.Minute)

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestOutboxBacklogChecker_UnhealthyOnError(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutboxStats{err: errors.New("db down")}, 0, 0)

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", check.Status)
	}
}
