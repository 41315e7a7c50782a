package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/receipt"
	"github.com/vladislavdragonenkov/pos/internal/service/checkout"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	catalog := memory.NewCatalog()
	catalog.Seed(
		domain.Product{IMEI: "356938035643809", Name: "Samsung Galaxy A15", PriceUSD: decimal.NewFromInt(180), Stock: 10},
		domain.Product{IMEI: "867530912345678", Name: "Xiaomi Redmi 13C", PriceUSD: decimal.NewFromInt(140), Stock: 5},
	)
	ledger := memory.NewSalesLedger(memory.NewOutboxRepository())

	engine := checkout.NewEngine(
		catalog,
		memory.NewSettings(decimal.NewFromInt(40)),
		ledger,
		memory.NewIdempotencyRepository(),
		checkout.WithMetrics(nil),
	)
	if err := engine.LoadSettings(context.Background()); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	renderer, err := receipt.NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	return NewRouter(NewHandler(engine, ledger, renderer), NewMiddleware())
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) snapshotResponse {
	t.Helper()

	var snap snapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (%s)", err, rec.Body.String())
	}
	return snap
}

func TestHandler_GetSettings(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.ExchangeRate.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected rate %s", resp.ExchangeRate)
	}
}

func TestHandler_SaveRateRejectsNonPositive(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/settings/rate", saveRateRequest{Rate: decimal.Zero})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "La tasa debe ser") {
		t.Fatalf("expected spanish message, got %s", rec.Body.String())
	}
}

func TestHandler_AddCartItem(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "redmi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	snap := decodeSnapshot(t, rec)
	if snap.State != "building" || len(snap.Items) != 1 || snap.Items[0].Name != "Xiaomi Redmi 13C" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.TotalBsLabel != "Bs. 5.600,00" {
		t.Fatalf("unexpected bolivar label: %s", snap.TotalBsLabel)
	}
}

func TestHandler_AddCartItemNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "nokia 3310"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Producto no encontrado") {
		t.Fatalf("expected spanish not-found message, got %s", rec.Body.String())
	}
}

func TestHandler_CheckoutRequiresCustomer(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "356938035643809"})

	rec := doJSON(t, srv, http.MethodPost, "/api/checkout/", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Por favor complete los datos") {
		t.Fatalf("expected validation message, got %s", rec.Body.String())
	}
}

func TestHandler_FullSaleFlow(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "356938035643809"})
	doJSON(t, srv, http.MethodPut, "/api/cart/customer", customerRequest{
		FullName: "Juan Pérez", Cedula: "V-12345678", Phone: "0412-5550001",
	})
	doJSON(t, srv, http.MethodPut, "/api/cart/financing", financingRequest{Provider: "Cashea"})

	rec := doJSON(t, srv, http.MethodPost, "/api/checkout/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout failed: %d %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.State != "review_pending" {
		t.Fatalf("expected review_pending, got %s", snap.State)
	}
	if snap.Plan == nil || len(snap.Plan.Installments) != 6 {
		t.Fatalf("expected 6 installments in plan, got %+v", snap.Plan)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/checkout/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm failed: %d %s", rec.Code, rec.Body.String())
	}
	var record saleRecordView
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.SaleID == "" || !strings.HasPrefix(record.ReceiptURL, "/api/receipts/") {
		t.Fatalf("unexpected record: %+v", record)
	}

	rec = doJSON(t, srv, http.MethodGet, record.ReceiptURL, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt failed: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "RECIBO") || !strings.Contains(rec.Body.String(), record.SaleID) {
		t.Fatal("receipt html is missing expected content")
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/checkout/acknowledge", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("acknowledge failed: %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.State != "idle" || len(snap.Items) != 0 {
		t.Fatalf("expected clean idle snapshot, got %+v", snap)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sales", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history failed: %d", rec.Code)
	}
	var history []saleRecordView
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].SaleID != record.SaleID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestHandler_CancelKeepsCart(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "redmi"})
	doJSON(t, srv, http.MethodPut, "/api/cart/customer", customerRequest{FullName: "Ana", Cedula: "V-1"})
	doJSON(t, srv, http.MethodPost, "/api/checkout/", nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/checkout/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel failed: %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.State != "building" || len(snap.Items) != 1 {
		t.Fatalf("cart must survive cancel, got %+v", snap)
	}
}

func TestHandler_EditLockedDuringReview(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "redmi"})
	doJSON(t, srv, http.MethodPut, "/api/cart/customer", customerRequest{FullName: "Ana", Cedula: "V-1"})
	doJSON(t, srv, http.MethodPost, "/api/checkout/", nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/cart/items", addItemRequest{Term: "redmi"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "venta en revisión") {
		t.Fatalf("expected locked message, got %s", rec.Body.String())
	}
}

func TestHandler_ReceiptNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/receipts/VEN-404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_BadJSONBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
