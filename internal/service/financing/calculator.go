// Package financing реализует калькулятор рассрочки: первоначальный взнос по
// доле провайдера и шесть квот по полумесячному графику.
package financing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// installmentCount фиксирован для всех провайдеров.
const installmentCount = 6

// defaultInitialShare применяется к провайдерам, для которых доля не задана.
var defaultInitialShare = decimal.NewFromFloat(0.50)

// initialShares — таблица долей первоначального взноса по провайдерам.
// Константы конфигурации калькулятора, бизнес ими не управляет из UI.
var initialShares = map[domain.FinancingProvider]decimal.Decimal{
	domain.FinancingCashea:      decimal.NewFromFloat(0.50),
	domain.FinancingZonaNaranja: decimal.NewFromFloat(0.40),
	domain.FinancingWepa:        decimal.NewFromFloat(0.30),
	domain.FinancingChollo:      decimal.NewFromFloat(0.45),
}

// InitialShare возвращает долю первоначального взноса для провайдера.
func InitialShare(provider domain.FinancingProvider) decimal.Decimal {
	if share, ok := initialShares[provider]; ok {
		return share
	}
	return defaultInitialShare
}

// ComputePlan строит план рассрочки для суммы totalUSD по курсу rate,
// отсчитывая даты квот от from. Чистая функция: курс фиксируется в квотах
// на момент вызова и позже не пересчитывается. Положительность rate —
// контракт вызывающей стороны, калькулятор её не проверяет.
func ComputePlan(totalUSD decimal.Decimal, provider domain.FinancingProvider, rate decimal.Decimal, from time.Time) domain.FinancingPlan {
	if !provider.Financed() {
		// Contado: вся сумма сразу, графика нет.
		return domain.FinancingPlan{InitialUSD: totalUSD}
	}

	initial := totalUSD.Mul(InitialShare(provider))
	financed := totalUSD.Sub(initial)
	perInstallment := financed.Div(decimal.NewFromInt(installmentCount))

	installments := make([]domain.Installment, 0, installmentCount)
	due := from
	for i := 1; i <= installmentCount; i++ {
		due = NextDueDate(due)
		installments = append(installments, domain.Installment{
			Number:    i,
			DueDate:   due,
			AmountUSD: perInstallment,
			AmountBs:  perInstallment.Mul(rate),
		})
	}

	return domain.FinancingPlan{
		InitialUSD:   initial,
		Installments: installments,
	}
}

// NextDueDate возвращает следующую дату платежа по полумесячному правилу:
// до 15-го — 15-е текущего месяца; до "условного тридцатого"
// (min(30, последний день месяца)) — этот условный тридцатый; иначе —
// 15-е следующего месяца. Правило применяется итеративно от предыдущей
// квоты, поэтому даты строго возрастают и чередуются между серединой и
// концом месяца.
func NextDueDate(from time.Time) time.Time {
	year, month, day := from.Date()
	loc := from.Location()

	endDay := lastDayOfMonth(year, month)
	if endDay > 30 {
		endDay = 30
	}

	switch {
	case day < 15:
		return time.Date(year, month, 15, 0, 0, 0, 0, loc)
	case day < endDay:
		return time.Date(year, month, endDay, 0, 0, 0, 0, loc)
	default:
		return time.Date(year, month+1, 15, 0, 0, 0, 0, loc)
	}
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
