package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/currency"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/receipt"
	"github.com/vladislavdragonenkov/pos/internal/service/checkout"
)

// Handler обслуживает браузерный фронтенд точки продаж.
type Handler struct {
	engine   *checkout.Engine
	ledger   domain.SalesLedger
	renderer *receipt.Renderer
	logger   *log.Entry
}

// NewHandler создаёт HTTP-handler поверх движка оформления.
func NewHandler(engine *checkout.Engine, ledger domain.SalesLedger, renderer *receipt.Renderer) *Handler {
	return &Handler{
		engine:   engine,
		ledger:   ledger,
		renderer: renderer,
		logger:   log.WithField("component", "api"),
	}
}

type settingsResponse struct {
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

type saveRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

type customerRequest struct {
	FullName string `json:"full_name"`
	Cedula   string `json:"cedula"`
	Phone    string `json:"phone"`
}

type financingRequest struct {
	Provider string `json:"provider"`
}

type observationsRequest struct {
	Text string `json:"text"`
}

type addItemRequest struct {
	Term string `json:"term"`
}

type cartLineView struct {
	IMEI         string          `json:"imei"`
	Name         string          `json:"name"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	Qty          int             `json:"qty"`
	LineTotalUSD decimal.Decimal `json:"line_total_usd"`
}

type installmentView struct {
	Number    int             `json:"number"`
	DueDate   string          `json:"due_date"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	AmountBs  decimal.Decimal `json:"amount_bs"`
}

type planView struct {
	InitialUSD   decimal.Decimal   `json:"initial_usd"`
	Installments []installmentView `json:"installments"`
}

type snapshotResponse struct {
	State         string          `json:"state"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	Customer      customerRequest `json:"customer"`
	Financing     string          `json:"financing"`
	Observations  string          `json:"observations"`
	Items         []cartLineView  `json:"items"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	TotalBs       decimal.Decimal `json:"total_bs"`
	TotalUSDLabel string          `json:"total_usd_label"`
	TotalBsLabel  string          `json:"total_bs_label"`
	Plan          *planView       `json:"plan,omitempty"`
}

type saleRecordView struct {
	SaleID        string          `json:"sale_id"`
	RecordedAt    time.Time       `json:"recorded_at"`
	Client        string          `json:"client"`
	Cedula        string          `json:"cedula"`
	ItemsSummary  string          `json:"items_summary"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	TotalBs       decimal.Decimal `json:"total_bs"`
	PaymentMethod string          `json:"payment_method"`
	Financed      bool            `json:"financed"`
	ReceiptURL    string          `json:"receipt_url"`
}

// GetSettings возвращает текущий курс обмена.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, http.StatusOK, settingsResponse{ExchangeRate: h.engine.ExchangeRate()})
}

// SaveRate сохраняет новый курс обмена.
func (h *Handler) SaveRate(w http.ResponseWriter, r *http.Request) {
	var req saveRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(h.logger, w, http.StatusBadRequest, err, errBadRequestText)
		return
	}

	if err := h.engine.SaveExchangeRate(r.Context(), req.Rate); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, settingsResponse{ExchangeRate: h.engine.ExchangeRate()})
}

// GetCart возвращает снимок черновика продажи.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// AddCartItem ищет товар по IMEI или имени и добавляет его в корзину.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(h.logger, w, http.StatusBadRequest, err, errBadRequestText)
		return
	}

	if _, err := h.engine.AddProductByTerm(r.Context(), req.Term); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// RemoveCartItem убирает строку корзины по IMEI.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveProduct(chi.URLParam(r, "imei")); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// SetCustomer заполняет данные покупателя.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(h.logger, w, http.StatusBadRequest, err, errBadRequestText)
		return
	}

	err := h.engine.SetCustomer(domain.Customer{
		FullName: req.FullName,
		Cedula:   req.Cedula,
		Phone:    req.Phone,
	})
	if err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// SetFinancing меняет способ оплаты черновика.
func (h *Handler) SetFinancing(w http.ResponseWriter, r *http.Request) {
	var req financingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(h.logger, w, http.StatusBadRequest, err, errBadRequestText)
		return
	}

	if err := h.engine.SetFinancing(domain.FinancingProvider(req.Provider)); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// SetObservations сохраняет примечания к продаже.
func (h *Handler) SetObservations(w http.ResponseWriter, r *http.Request) {
	var req observationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(h.logger, w, http.StatusBadRequest, err, errBadRequestText)
		return
	}

	if err := h.engine.SetObservations(req.Text); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// RequestCheckout собирает снимок продажи и переводит черновик в ожидание
// подтверждения.
func (h *Handler) RequestCheckout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engine.RequestCheckout(); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// CancelCheckout возвращает черновик в редактирование без потери корзины.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.CancelReview(); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// ConfirmCheckout отправляет подтверждённый снимок во внешний реестр.
func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.Confirm(r.Context())
	if err != nil {
		code, msg := statusAndText(err)
		if code == http.StatusInternalServerError {
			msg = errLedgerFailureText
		}
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, recordView(record))
}

// AcknowledgeSale закрывает экран успешной продажи и освобождает движок.
func (h *Handler) AcknowledgeSale(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Acknowledge(); err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}
	sendJSON(h.logger, w, http.StatusOK, snapshotView(h.engine.Snapshot()))
}

// History возвращает продажи от новых к старым.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.History(r.Context())
	if err != nil {
		sendErr(h.logger, w, http.StatusBadGateway, err, errLedgerFailureText)
		return
	}

	views := make([]saleRecordView, 0, len(records))
	for _, record := range records {
		views = append(views, recordView(record))
	}
	sendJSON(h.logger, w, http.StatusOK, views)
}

// Receipt рендерит HTML-чек по идентификатору продажи.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")

	rec, err := h.ledger.Receipt(r.Context(), saleID)
	if err != nil {
		code, msg := statusAndText(err)
		sendErr(h.logger, w, code, err, msg)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, rec); err != nil {
		h.logger.WithError(err).WithField("sale_id", saleID).Error("failed to render receipt")
	}
}

func snapshotView(snap checkout.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		State:        string(snap.State),
		ExchangeRate: snap.ExchangeRate,
		Customer: customerRequest{
			FullName: snap.Customer.FullName,
			Cedula:   snap.Customer.Cedula,
			Phone:    snap.Customer.Phone,
		},
		Financing:     string(snap.Financing),
		Observations:  snap.Observations,
		Items:         make([]cartLineView, 0, len(snap.Cart)),
		TotalUSD:      snap.TotalUSD,
		TotalBs:       snap.TotalBs,
		TotalUSDLabel: currency.Format(snap.TotalUSD, currency.USD),
		TotalBsLabel:  currency.Format(snap.TotalBs, currency.Bs),
	}

	for _, line := range snap.Cart {
		resp.Items = append(resp.Items, cartLineView{
			IMEI:         line.Product.IMEI,
			Name:         line.Product.Name,
			PriceUSD:     line.Product.PriceUSD,
			Qty:          line.Qty,
			LineTotalUSD: line.LineTotalUSD(),
		})
	}

	if snap.Financing.Financed() {
		plan := planView{
			InitialUSD:   snap.Plan.InitialUSD,
			Installments: make([]installmentView, 0, len(snap.Plan.Installments)),
		}
		for _, inst := range snap.Plan.Installments {
			plan.Installments = append(plan.Installments, installmentView{
				Number:    inst.Number,
				DueDate:   inst.DueDate.Format("2006-01-02"),
				AmountUSD: inst.AmountUSD,
				AmountBs:  inst.AmountBs,
			})
		}
		resp.Plan = &plan
	}

	return resp
}

func recordView(record domain.SaleRecord) saleRecordView {
	return saleRecordView{
		SaleID:        record.SaleID,
		RecordedAt:    record.RecordedAt,
		Client:        record.Client,
		Cedula:        record.Cedula,
		ItemsSummary:  record.ItemsSummary,
		TotalUSD:      record.TotalUSD,
		TotalBs:       record.TotalBs,
		PaymentMethod: record.PaymentMethod,
		Financed:      record.Financed,
		ReceiptURL:    record.ReceiptURL,
	}
}
