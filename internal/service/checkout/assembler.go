package checkout

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// AssembleSale собирает неизменяемый снимок продажи из текущего черновика.
// Корзина клонируется: дальнейшие правки черновика снимок не затрагивают.
// Нарушенные предусловия (пустая корзина, пустые имя или cédula) возвращаются
// одной ошибкой через errors.Join — это пользовательская валидация, а не сбой.
func AssembleSale(
	submissionID string,
	customer domain.Customer,
	cart domain.Cart,
	rate decimal.Decimal,
	provider domain.FinancingProvider,
	plan domain.FinancingPlan,
	observations string,
	date time.Time,
) (domain.SaleSubmission, error) {
	submission := domain.SaleSubmission{
		SubmissionID: submissionID,
		Customer:     customer,
		Items:        cart.Clone(),
		ExchangeRate: rate,
		Financing:    provider,
		Plan:         plan,
		TotalUSD:     cart.TotalUSD(),
		Observations: observations,
		Date:         date,
	}

	if errs := submission.ValidateInvariants(); len(errs) > 0 {
		return domain.SaleSubmission{}, errors.Join(errs...)
	}

	return submission, nil
}
