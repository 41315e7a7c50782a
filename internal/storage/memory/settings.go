package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// settingsInMemory хранит курс обмена в памяти процесса.
type settingsInMemory struct {
	mu   sync.RWMutex
	rate decimal.Decimal
}

// NewSettings создаёт in-memory настройки со стартовым курсом.
func NewSettings(rate decimal.Decimal) *settingsInMemory {
	return &settingsInMemory{rate: rate}
}

// ExchangeRate возвращает текущий курс Bs/$.
func (s *settingsInMemory) ExchangeRate(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate, nil
}

// SaveExchangeRate сохраняет новый курс.
func (s *settingsInMemory) SaveExchangeRate(_ context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return domain.ErrExchangeRateInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	return nil
}

var _ domain.SettingsService = (*settingsInMemory)(nil)
