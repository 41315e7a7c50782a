package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	// Подстрочный поиск по имени включается от четырёх символов, чтобы
	// односимвольные запросы не вытаскивали полкаталога.
	minNameSearchLen = 4
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogService.
func NewCatalogRepository(store *Store) *catalogRepository {
	return &catalogRepository{db: store.DB()}
}

// ProductByTerm ищет товар по точному IMEI либо по подстроке имени.
func (r *catalogRepository) ProductByTerm(ctx context.Context, term string) (domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := r.scanOne(queryCtx, `
		SELECT imei, name, price_usd, stock
		FROM products
		WHERE LOWER(imei) = LOWER($1)
	`, term)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, err
	}

	if len([]rune(term)) < minNameSearchLen {
		return domain.Product{}, domain.ErrProductNotFound
	}

	return r.scanOne(queryCtx, `
		SELECT imei, name, price_usd, stock
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name, imei
		LIMIT 1
	`, term)
}

// Upsert добавляет товар либо обновляет цену и остаток существующего.
func (r *catalogRepository) Upsert(ctx context.Context, product domain.Product) error {
	if errs := product.Valid(); len(errs) > 0 {
		return errs[0]
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(queryCtx, `
		INSERT INTO products (imei, name, price_usd, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (imei) DO UPDATE
		SET name = EXCLUDED.name,
		    price_usd = EXCLUDED.price_usd,
		    stock = EXCLUDED.stock,
		    updated_at = NOW()
	`, product.IMEI, product.Name, product.PriceUSD, product.Stock)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Seed загружает стартовый набор товаров (для демо-окружения).
func (r *catalogRepository) Seed(ctx context.Context, products ...domain.Product) error {
	for _, product := range products {
		if err := r.Upsert(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (r *catalogRepository) scanOne(ctx context.Context, query string, args ...any) (domain.Product, error) {
	var product domain.Product
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&product.IMEI, &product.Name, &product.PriceUSD, &product.Stock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

var _ domain.CatalogService = (*catalogRepository)(nil)
