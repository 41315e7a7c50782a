package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
	"github.com/vladislavdragonenkov/pos/internal/storage/postgres"
)

// Dependencies содержит хранилища точки продаж. Store не nil только в
// postgres-режиме.
type Dependencies struct {
	Catalog  domain.CatalogService
	Settings domain.SettingsService
	Ledger   domain.SalesLedger
	Outbox   domain.OutboxRepository
	Idem     domain.IdempotencyRepository
	Store    *postgres.Store
	Logger   *log.Entry
}

// NewDependencies собирает хранилища: postgres при заданном DSN, иначе
// in-memory для разработки и демо.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres dsn is empty, using in-memory storage")
		catalog := memory.NewCatalog()
		if cfg.DemoSeed {
			catalog.Seed(demoCatalog()...)
		}
		outbox := memory.NewOutboxRepository()
		return &Dependencies{
			Catalog:  catalog,
			Settings: memory.NewSettings(cfg.DefaultRate),
			Ledger:   memory.NewSalesLedger(outbox),
			Outbox:   outbox,
			Idem:     memory.NewIdempotencyRepository(),
			Logger:   logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	catalog := postgres.NewCatalogRepository(store)
	if cfg.DemoSeed {
		if err := catalog.Seed(ctx, demoCatalog()...); err != nil {
			logger.WithError(err).Warn("failed to seed demo catalog")
		}
	}

	return &Dependencies{
		Catalog:  catalog,
		Settings: postgres.NewSettingsRepository(store),
		Ledger:   postgres.NewSalesRepository(store),
		Outbox:   postgres.NewOutboxRepository(store),
		Idem:     postgres.NewIdempotencyRepository(store),
		Store:    store,
		Logger:   logger,
	}, nil
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// demoCatalog — стартовый набор телефонов для демонстрационной точки.
func demoCatalog() []domain.Product {
	return []domain.Product{
		{IMEI: "356938035643809", Name: "Samsung Galaxy A15", PriceUSD: decimal.NewFromInt(180), Stock: 10},
		{IMEI: "867530912345678", Name: "Xiaomi Redmi 13C", PriceUSD: decimal.NewFromInt(140), Stock: 8},
		{IMEI: "111122223333444", Name: "Motorola G24", PriceUSD: decimal.NewFromInt(120), Stock: 6},
		{IMEI: "990000862471854", Name: "Samsung Galaxy S23", PriceUSD: decimal.NewFromInt(650), Stock: 3},
		{IMEI: "352099001761481", Name: "iPhone 13", PriceUSD: decimal.NewFromInt(520), Stock: 2},
	}
}
