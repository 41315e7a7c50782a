package domain

import "github.com/shopspring/decimal"

// Product описывает позицию каталога (телефон), полученную из внешнего инвентаря.
// После успешного поиска объект считается неизменяемым снимком.
type Product struct {
	// IMEI — уникальный идентификатор устройства, по нему ищут и сканируют.
	IMEI string
	// Name — отображаемое название модели.
	Name string
	// PriceUSD — базовая цена в долларах.
	PriceUSD decimal.Decimal
	// Stock — остаток на складе на момент поиска.
	Stock int
}

// Valid проверяет минимальные инварианты позиции каталога.
func (p Product) Valid() []error {
	var errs []error
	if p.IMEI == "" {
		errs = append(errs, ErrProductIMEIRequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceUSD.IsNegative() {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrProductStockNegative)
	}
	return errs
}
