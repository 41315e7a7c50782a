package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancingProvider описывает закрытый набор рассрочных партнёров магазина.
// Значения совпадают с метками, которые печатаются в чеке и истории продаж.
type FinancingProvider string

const (
	// FinancingNone — продажа за полную стоимость, без графика платежей.
	FinancingNone FinancingProvider = "Contado"
	// FinancingCashea — партнёр Cashea.
	FinancingCashea FinancingProvider = "Cashea"
	// FinancingZonaNaranja — партнёр Zona Naranja.
	FinancingZonaNaranja FinancingProvider = "Zona Naranja"
	// FinancingWepa — партнёр Wepa.
	FinancingWepa FinancingProvider = "Wepa"
	// FinancingChollo — партнёр Chollo.
	FinancingChollo FinancingProvider = "Chollo"
)

// Valid проверяет, что значение относится к известным провайдерам.
func (p FinancingProvider) Valid() bool {
	switch p {
	case FinancingNone, FinancingCashea, FinancingZonaNaranja, FinancingWepa, FinancingChollo:
		return true
	default:
		return false
	}
}

// Financed сообщает, активирован ли рассрочный план.
func (p FinancingProvider) Financed() bool {
	return p != FinancingNone
}

// Installment — одна квота графика платежей. Сумма в боливарах зафиксирована
// по курсу на момент расчёта и не пересчитывается при изменении курса.
type Installment struct {
	// Number — порядковый номер квоты, начиная с 1.
	Number int
	// DueDate — календарная дата платежа (15-е либо min(30, конец месяца)).
	DueDate time.Time
	// AmountUSD — сумма квоты в долларах.
	AmountUSD decimal.Decimal
	// AmountBs — та же сумма в боливарах по зафиксированному курсу.
	AmountBs decimal.Decimal
}

// FinancingPlan — результат работы калькулятора рассрочки: первоначальный
// взнос и упорядоченный график квот. Для FinancingNone график пуст, а взнос
// равен полной сумме.
type FinancingPlan struct {
	InitialUSD   decimal.Decimal
	Installments []Installment
}

// Financed сообщает, есть ли в плане квоты.
func (p FinancingPlan) Financed() bool {
	return len(p.Installments) > 0
}
