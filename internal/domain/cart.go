package domain

import "github.com/shopspring/decimal"

// CartLine — одна строка корзины: товар плюс количество.
type CartLine struct {
	Product Product
	// Qty всегда >= 1; нулевых строк в корзине не бывает.
	Qty int
}

// LineTotalUSD возвращает сумму строки: цена * количество.
func (l CartLine) LineTotalUSD() decimal.Decimal {
	return l.Product.PriceUSD.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart — упорядоченный набор строк корзины. Значение, а не указатель:
// все операции возвращают новую корзину, вызывающая сторона сама заменяет
// свою копию. На один IMEI приходится не более одной строки.
type Cart []CartLine

// Add добавляет товар в корзину. Если строка с таким IMEI уже есть,
// увеличивает её количество на единицу, сохраняя порядок первого появления.
func (c Cart) Add(p Product) Cart {
	next := make(Cart, len(c))
	copy(next, c)
	for i := range next {
		if next[i].Product.IMEI == p.IMEI {
			next[i].Qty++
			return next
		}
	}
	return append(next, CartLine{Product: p, Qty: 1})
}

// Remove убирает строку целиком (не декремент). Отсутствующий IMEI — no-op.
func (c Cart) Remove(imei string) Cart {
	next := make(Cart, 0, len(c))
	for _, line := range c {
		if line.Product.IMEI == imei {
			continue
		}
		next = append(next, line)
	}
	return next
}

// TotalUSD суммирует строки корзины: qty * price.
func (c Cart) TotalUSD() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c {
		total = total.Add(line.LineTotalUSD())
	}
	return total
}

// IsEmpty сообщает, пуста ли корзина.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Clone возвращает независимую копию, чтобы снимки продажи не делили слайс
// с живой корзиной.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	next := make(Cart, len(c))
	copy(next, c)
	return next
}
