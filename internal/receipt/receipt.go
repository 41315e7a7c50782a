// Package receipt рендерит HTML-чек продажи для печати и отправки клиенту.
package receipt

import (
	"fmt"
	"html/template"
	"io"

	"github.com/vladislavdragonenkov/pos/internal/currency"
	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	shopName    = "ACI MOVILNET"
	shopAddress = "Av. Lara, Valencia, Venezuela"
	shopPhone   = "Tel: 0426 7408955"
	footerLine  = "Gracias por preferir a ACI Movilnet. La mejor tecnología a tu alcance."

	dateLayout = "02/01/2006"
)

// Renderer превращает запись продажи в HTML-чек.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer парсит шаблон чека один раз при старте.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render пишет чек продажи в w. Суммы форматируются в венесуэльской
// локали, рассрочка печатается только для финансируемых продаж.
func (r *Renderer) Render(w io.Writer, receipt domain.SaleReceipt) error {
	if err := r.tmpl.Execute(w, buildView(receipt)); err != nil {
		return fmt.Errorf("render receipt %s: %w", receipt.Record.SaleID, err)
	}
	return nil
}

type receiptView struct {
	ShopName     string
	ShopAddress  string
	ShopPhone    string
	Footer       string
	SaleID       string
	Date         string
	ExchangeRate string
	Client       string
	Cedula       string
	Phone        string
	Lines        []lineView
	TotalUSD     string
	TotalBs      string
	Financed     bool
	Financing    string
	InitialUSD   string
	Installments []installmentView
	Observations string
}

type lineView struct {
	Name      string
	IMEI      string
	Qty       int
	PriceUSD  string
	LineTotal string
}

type installmentView struct {
	Number    int
	DueDate   string
	AmountUSD string
	AmountBs  string
}

func buildView(receipt domain.SaleReceipt) receiptView {
	sub := receipt.Submission
	record := receipt.Record

	view := receiptView{
		ShopName:     shopName,
		ShopAddress:  shopAddress,
		ShopPhone:    shopPhone,
		Footer:       footerLine,
		SaleID:       record.SaleID,
		Date:         sub.Date.Format(dateLayout),
		ExchangeRate: currency.Format(sub.ExchangeRate, currency.Bs),
		Client:       sub.Customer.FullName,
		Cedula:       sub.Customer.Cedula,
		Phone:        sub.Customer.Phone,
		TotalUSD:     currency.Format(sub.TotalUSD, currency.USD),
		TotalBs:      currency.Format(sub.TotalBs(), currency.Bs),
		Financed:     sub.Financing.Financed(),
		Financing:    string(sub.Financing),
		Observations: sub.Observations,
	}
	if view.Observations == "" {
		view.Observations = "Ninguna"
	}

	for _, line := range sub.Items {
		view.Lines = append(view.Lines, lineView{
			Name:      line.Product.Name,
			IMEI:      line.Product.IMEI,
			Qty:       line.Qty,
			PriceUSD:  currency.Format(line.Product.PriceUSD, currency.USD),
			LineTotal: currency.Format(line.LineTotalUSD(), currency.USD),
		})
	}

	if view.Financed {
		view.InitialUSD = currency.Format(sub.Plan.InitialUSD, currency.USD)
		for _, inst := range sub.Plan.Installments {
			view.Installments = append(view.Installments, installmentView{
				Number:    inst.Number,
				DueDate:   inst.DueDate.Format(dateLayout),
				AmountUSD: currency.Format(inst.AmountUSD, currency.USD),
				AmountBs:  currency.Format(inst.AmountBs, currency.Bs),
			})
		}
	}

	return view
}

const receiptTemplate = `<html>
  <body style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; padding: 40px; color: #333;">
    <table style="width: 100%; border-bottom: 2px solid #FF6600; padding-bottom: 20px; margin-bottom: 20px;">
      <tr>
        <td valign="top" style="width: 60%;">
          <div style="color: #003399; font-size: 18px; font-weight: bold;">{{.ShopName}}</div>
          <div style="font-size: 12px; color: #555;">{{.ShopAddress}}</div>
          <div style="font-size: 12px; color: #555;">{{.ShopPhone}}</div>
        </td>
        <td valign="top" style="text-align: right;">
          <div style="font-size: 24px; font-weight: bold; color: #333;">RECIBO</div>
          <div style="font-size: 14px; color: #666; margin-top: 5px;"># {{.SaleID}}</div>
          <div style="font-size: 12px; color: #666; margin-top: 5px;">Fecha: {{.Date}}</div>
          <div style="font-size: 12px; color: #666;">Tasa: {{.ExchangeRate}}</div>
        </td>
      </tr>
    </table>
    <div style="margin-bottom: 20px; padding: 15px; background-color: #f4f6f8; border-radius: 5px;">
      <table style="width: 100%; font-size: 13px;">
        <tr>
          <td><strong>Cliente:</strong> {{.Client}}</td>
          <td><strong>Cédula:</strong> {{.Cedula}}</td>
          <td style="text-align: right;"><strong>Teléfono:</strong> {{.Phone}}</td>
        </tr>
      </table>
    </div>
    <table style="width: 100%; border-collapse: collapse; font-size: 13px;">
      <thead>
        <tr style="background-color: #003399; color: white;">
          <th style="padding: 10px; text-align: left;">Producto</th>
          <th style="padding: 10px; text-align: center;">Cant</th>
          <th style="padding: 10px; text-align: right;">Precio</th>
          <th style="padding: 10px; text-align: right;">Total</th>
        </tr>
      </thead>
      <tbody>
        {{range .Lines}}<tr style="border-bottom: 1px solid #eee;">
          <td style="padding: 10px; color: #333;">
            <div style="font-weight: bold;">{{.Name}}</div>
            <div style="font-size: 10px; color: #666;">IMEI: {{.IMEI}}</div>
          </td>
          <td style="padding: 10px; text-align: center;">{{.Qty}}</td>
          <td style="padding: 10px; text-align: right;">{{.PriceUSD}}</td>
          <td style="padding: 10px; text-align: right; font-weight: bold;">{{.LineTotal}}</td>
        </tr>
        {{end}}
      </tbody>
      <tfoot>
        <tr>
          <td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total USD:</td>
          <td style="padding: 10px; text-align: right; font-weight: bold; font-size: 14px;">{{.TotalUSD}}</td>
        </tr>
        <tr>
          <td colspan="3" style="padding: 10px; text-align: right; color: #666;">Total Bs:</td>
          <td style="padding: 10px; text-align: right; font-weight: bold; color: #FF6600; font-size: 14px;">{{.TotalBs}}</td>
        </tr>
      </tfoot>
    </table>
    {{if .Financed}}<div style="margin-top: 20px; background-color: #f9f9f9; padding: 15px; border-radius: 5px;">
      <h3 style="color: #FF6600; font-size: 14px; margin-top: 0;">Plan de Financiamiento ({{.Financing}})</h3>
      <p style="font-size: 12px; margin: 5px 0;"><strong>Inicial:</strong> {{.InitialUSD}}</p>
      <table style="width: 100%; font-size: 11px; border-collapse: collapse;">
        <thead>
          <tr style="border-bottom: 1px solid #ddd; color: #555;">
            <th style="text-align: left; padding: 5px;">#</th>
            <th style="text-align: left; padding: 5px;">Fecha</th>
            <th style="text-align: right; padding: 5px;">Monto $</th>
            <th style="text-align: right; padding: 5px;">Monto Bs</th>
          </tr>
        </thead>
        <tbody>
          {{range .Installments}}<tr>
            <td style="padding: 5px;">{{.Number}}</td>
            <td style="padding: 5px;">{{.DueDate}}</td>
            <td style="padding: 5px; text-align: right;">{{.AmountUSD}}</td>
            <td style="padding: 5px; text-align: right; color: #666;">{{.AmountBs}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
    </div>
    {{end}}<div style="margin-top: 20px; font-size: 12px; color: #777; border-left: 3px solid #ddd; padding-left: 10px;">
      <strong>Observaciones:</strong> {{.Observations}}
    </div>
    <div style="margin-top: 50px; text-align: center; font-size: 11px; color: #aaa; border-top: 1px solid #eee; padding-top: 10px;">
      {{.Footer}}
    </div>
  </body>
</html>
`
