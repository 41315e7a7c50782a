package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository создаёт PostgreSQL-реализацию SettingsService.
// Настройки живут в единственной строке таблицы pos_settings; стартовый
// курс заводит миграция.
func NewSettingsRepository(store *Store) domain.SettingsService {
	return &settingsRepository{db: store.DB()}
}

func (r *settingsRepository) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var rate decimal.Decimal
	err := r.db.QueryRowContext(queryCtx, `
		SELECT exchange_rate FROM pos_settings WHERE id = 1
	`).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, fmt.Errorf("pos settings row is missing, run migrations")
		}
		return decimal.Decimal{}, fmt.Errorf("select exchange rate: %w", err)
	}
	return rate, nil
}

func (r *settingsRepository) SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return domain.ErrExchangeRateInvalid
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(queryCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(queryCtx, `
		INSERT INTO pos_settings (id, exchange_rate, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET exchange_rate = EXCLUDED.exchange_rate,
		    updated_at = NOW()
	`, rate)
	if err != nil {
		return fmt.Errorf("save exchange rate: %w", err)
	}

	var payload []byte
	payload, err = json.Marshal(map[string]interface{}{
		"exchange_rate": rate,
		"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal rate event: %w", err)
	}

	_, err = tx.ExecContext(queryCtx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,'settings','pos_settings','RateUpdated',$2,'pending',0,NOW(),NOW())
	`, uuid.NewString(), payload)
	if err != nil {
		return fmt.Errorf("enqueue rate event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rate: %w", err)
	}
	return nil
}

var _ domain.SettingsService = (*settingsRepository)(nil)
