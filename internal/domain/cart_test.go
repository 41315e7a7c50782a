package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// helper для товара с заданной ценой.
func makeProduct(imei, name string, price int64) domain.Product {
	return domain.Product{
		IMEI:     imei,
		Name:     name,
		PriceUSD: decimal.NewFromInt(price),
		Stock:    10,
	}
}

func TestCartAdd_MergesDuplicateIMEI(t *testing.T) {
	a := makeProduct("356000111", "Samsung A15", 180)

	cart := domain.Cart{}.Add(a).Add(a)

	if len(cart) != 1 {
		t.Fatalf("expected single line after re-adding same IMEI, got %d", len(cart))
	}
	if cart[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", cart[0].Qty)
	}
	if !cart[0].LineTotalUSD().Equal(decimal.NewFromInt(360)) {
		t.Fatalf("expected line total 360, got %s", cart[0].LineTotalUSD())
	}
}

func TestCartAdd_PreservesInsertionOrder(t *testing.T) {
	a := makeProduct("1", "A", 100)
	b := makeProduct("2", "B", 200)
	c := makeProduct("3", "C", 300)

	cart := domain.Cart{}.Add(a).Add(b).Add(c).Add(b)

	want := []string{"1", "2", "3"}
	if len(cart) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(cart))
	}
	for i, imei := range want {
		if cart[i].Product.IMEI != imei {
			t.Fatalf("line %d: expected imei %s, got %s", i, imei, cart[i].Product.IMEI)
		}
	}
}

func TestCartRemove_DropsWholeLine(t *testing.T) {
	a := makeProduct("1", "A", 100)

	cart := domain.Cart{}.Add(a).Add(a)
	cart = cart.Remove("1")

	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart after remove, got %d lines", len(cart))
	}

	// Повторное добавление начинает со свежей строки qty=1, а не с прежних двух.
	cart = cart.Add(a)
	if len(cart) != 1 || cart[0].Qty != 1 {
		t.Fatalf("expected fresh qty-1 line, got %+v", cart)
	}
}

func TestCartRemove_AbsentIMEIIsNoop(t *testing.T) {
	a := makeProduct("1", "A", 100)
	cart := domain.Cart{}.Add(a)

	next := cart.Remove("does-not-exist")

	if len(next) != 1 {
		t.Fatalf("expected cart unchanged, got %d lines", len(next))
	}
}

func TestCartTotalUSD(t *testing.T) {
	cart := domain.Cart{}.
		Add(makeProduct("1", "A", 180)).
		Add(makeProduct("2", "B", 140)).
		Add(makeProduct("1", "A", 180))

	if !cart.TotalUSD().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total 500, got %s", cart.TotalUSD())
	}
}

func TestCartAdd_DoesNotMutateReceiver(t *testing.T) {
	a := makeProduct("1", "A", 100)
	orig := domain.Cart{}.Add(a)

	_ = orig.Add(a)

	if orig[0].Qty != 1 {
		t.Fatalf("original cart mutated: qty %d", orig[0].Qty)
	}
}
