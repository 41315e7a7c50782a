package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func seededCatalog() domain.CatalogService {
	catalog := memory.NewCatalog()
	catalog.Seed(
		domain.Product{IMEI: "356938035643809", Name: "Samsung Galaxy A15", PriceUSD: decimal.NewFromInt(180), Stock: 10},
		domain.Product{IMEI: "867530912345678", Name: "Xiaomi Redmi 13C", PriceUSD: decimal.NewFromInt(140), Stock: 5},
	)
	return catalog
}

func TestCatalogProductByTerm_ExactIMEI(t *testing.T) {
	catalog := seededCatalog()

	p, err := catalog.ProductByTerm(context.Background(), " 356938035643809 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Samsung Galaxy A15" {
		t.Fatalf("expected Samsung, got %q", p.Name)
	}
}

func TestCatalogProductByTerm_NameSubstring(t *testing.T) {
	catalog := seededCatalog()

	p, err := catalog.ProductByTerm(context.Background(), "redmi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IMEI != "867530912345678" {
		t.Fatalf("expected Xiaomi IMEI, got %q", p.IMEI)
	}
}

func TestCatalogProductByTerm_ShortSubstringIsNotFound(t *testing.T) {
	catalog := seededCatalog()

	// Три символа — ниже порога подстрочного поиска.
	if _, err := catalog.ProductByTerm(context.Background(), "sam"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogProductByTerm_UnknownTerm(t *testing.T) {
	catalog := seededCatalog()

	if _, err := catalog.ProductByTerm(context.Background(), "000000000000000"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := catalog.ProductByTerm(context.Background(), "   "); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for blank term, got %v", err)
	}
}
