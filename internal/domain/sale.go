package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer — данные покупателя, которые клерк вводит перед оформлением.
type Customer struct {
	FullName string
	// Cedula — национальный идентификатор (cédula de identidad).
	Cedula string
	Phone  string
}

// SaleSubmission — неизменяемый снимок продажи, который передаётся внешнему
// хранилищу. Содержит копию корзины и курс на момент сборки, а не живые
// ссылки на черновик.
type SaleSubmission struct {
	// SubmissionID — UUID попытки оформления; по нему внешний реестр
	// дедуплицирует повторные подтверждения одной и той же продажи.
	SubmissionID string
	Customer     Customer
	Items        Cart
	ExchangeRate decimal.Decimal
	Financing    FinancingProvider
	Plan         FinancingPlan
	TotalUSD     decimal.Decimal
	Observations string
	Date         time.Time
}

// TotalBs возвращает сумму продажи в боливарах по зафиксированному курсу.
func (s SaleSubmission) TotalBs() decimal.Decimal {
	return s.TotalUSD.Mul(s.ExchangeRate)
}

// ItemsSummary строит короткую сводку позиций для истории: "2x Samsung A15, 1x ...".
func (s SaleSubmission) ItemsSummary() string {
	parts := make([]string, 0, len(s.Items))
	for _, line := range s.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", line.Qty, line.Product.Name))
	}
	return strings.Join(parts, ", ")
}

// ValidateInvariants проверяет базовые инварианты снимка и возвращает список замечаний.
func (s SaleSubmission) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(s.Customer.FullName) == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if strings.TrimSpace(s.Customer.Cedula) == "" {
		errs = append(errs, ErrCustomerCedulaRequired)
	}
	if s.Items.IsEmpty() {
		errs = append(errs, ErrCartEmpty)
	}
	if !s.ExchangeRate.IsPositive() {
		errs = append(errs, ErrExchangeRateInvalid)
	}

	// Сверяем итог продажи с суммой строк корзины.
	calc := decimal.Zero
	for _, line := range s.Items {
		if line.Qty < 1 {
			errs = append(errs, ErrCartQtyInvalid)
		}
		if line.Product.PriceUSD.IsNegative() {
			errs = append(errs, ErrProductPriceNegative)
		}
		calc = calc.Add(line.LineTotalUSD())
	}
	if !calc.Equal(s.TotalUSD) {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// SaleRecord — запись истории продаж, какой её возвращает внешний реестр.
type SaleRecord struct {
	// SaleID — публичный идентификатор вида VEN-<unix>.
	SaleID       string
	RecordedAt   time.Time
	Client       string
	Cedula       string
	ItemsSummary string
	TotalUSD     decimal.Decimal
	TotalBs      decimal.Decimal
	// PaymentMethod — метка формы оплаты ("Contado" либо имя провайдера).
	PaymentMethod string
	// Financed — признак рассрочки для фильтров истории.
	Financed bool
	// ReceiptURL — стабильная ссылка на чек, её можно отправить клиенту.
	ReceiptURL string
}

// SaleReceipt объединяет запись истории с исходным снимком продажи —
// ровно то, что нужно рендереру чека.
type SaleReceipt struct {
	Record     SaleRecord
	Submission SaleSubmission
}
