package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// minNameSearchLen — подстрочный поиск по имени включается от четырёх символов,
// чтобы короткий ввод не цеплял пол-каталога.
const minNameSearchLen = 4

// catalogInMemory — простая in-memory реализация CatalogService для локальной
// разработки и тестов.
type catalogInMemory struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewCatalog возвращает пустой in-memory каталог.
func NewCatalog() *catalogInMemory {
	return &catalogInMemory{}
}

// Seed добавляет позиции каталога (демо-режим и тесты).
func (c *catalogInMemory) Seed(products ...domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, products...)
}

// ProductByTerm ищет товар по точному IMEI либо по подстроке имени.
// Сравнение регистронезависимое, термин предварительно обрезается.
func (c *catalogInMemory) ProductByTerm(_ context.Context, term string) (domain.Product, error) {
	search := strings.ToLower(strings.TrimSpace(term))
	if search == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if strings.ToLower(strings.TrimSpace(p.IMEI)) == search {
			return p, nil
		}
		if len(search) >= minNameSearchLen && strings.Contains(strings.ToLower(p.Name), search) {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

var _ domain.CatalogService = (*catalogInMemory)(nil)
