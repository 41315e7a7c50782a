// Package currency форматирует денежные суммы для венесуэльской локали:
// разряды разделяются точкой, дробная часть — запятой, всегда два знака.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency — тег валюты отображаемой суммы.
type Currency string

const (
	// USD — базовая (стабильная) валюта магазина.
	USD Currency = "USD"
	// Bs — локальная валюта (боливар).
	Bs Currency = "Bs"
)

// Symbol возвращает префикс, с которым сумма печатается в чеке.
func (c Currency) Symbol() string {
	if c == Bs {
		return "Bs. "
	}
	return "$"
}

// Format отображает сумму с двумя дробными знаками и символом валюты,
// например "$1.234,56" или "Bs. 49.382,40". Чистая функция; NaN и
// бесконечности сюда не попадают — decimal их не представляет.
func Format(amount decimal.Decimal, c Currency) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(c.Symbol())
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// groupThousands вставляет точку между каждыми тремя разрядами целой части.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
