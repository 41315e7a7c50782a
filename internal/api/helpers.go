package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Тексты для клерка — по-испански, как на витрине точки продаж.
const (
	errInternalText       = "Error interno del sistema."
	errProductNotFound    = "Producto no encontrado. Verifique el IMEI o el nombre."
	errCatalogUnavailable = "Error de conexión con el inventario. Intente de nuevo."
	errValidationText     = "Por favor complete los datos del cliente y agregue productos."
	errDraftLockedText    = "Hay una venta en revisión. Cancele o confirme antes de editar."
	errInFlightText       = "La venta se está registrando, espere un momento."
	errNoPendingText      = "No hay venta pendiente por confirmar."
	errNothingToAckText   = "No hay venta registrada por cerrar."
	errRateInvalidText    = "La tasa debe ser un número mayor que cero."
	errUnknownProviderTxt = "Método de pago no válido."
	errLedgerFailureText  = "Error de conexión al registrar la venta. Intente de nuevo."
	errSaleNotFoundText   = "Venta no encontrada."
	errBadRequestText     = "Solicitud inválida."
)

// ResponseError — тело ответа с ошибкой для фронтенда.
type ResponseError struct {
	Message string `json:"message"`
}

func sendErr(logger *log.Entry, w http.ResponseWriter, code int, err error, msg string) {
	logger.WithError(err).WithField("http_code", code).Error(msg)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if encErr := json.NewEncoder(w).Encode(ResponseError{Message: msg}); encErr != nil {
		logger.WithError(encErr).Error("failed to encode error response")
	}
}

func sendJSON(logger *log.Entry, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// statusAndText подбирает HTTP-код и испанский текст под доменную ошибку.
func statusAndText(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, errProductNotFound
	case errors.Is(err, domain.ErrSaleNotFound):
		return http.StatusNotFound, errSaleNotFoundText
	case errors.Is(err, domain.ErrDraftLocked):
		return http.StatusConflict, errDraftLockedText
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict, errInFlightText
	case errors.Is(err, domain.ErrNoPendingReview):
		return http.StatusConflict, errNoPendingText
	case errors.Is(err, domain.ErrNothingToAcknowledge):
		return http.StatusConflict, errNothingToAckText
	case errors.Is(err, domain.ErrExchangeRateInvalid):
		return http.StatusUnprocessableEntity, errRateInvalidText
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusUnprocessableEntity, errUnknownProviderTxt
	case errors.Is(err, domain.ErrSaleRejected):
		return http.StatusUnprocessableEntity, errValidationText
	case errors.Is(err, domain.ErrCustomerNameRequired),
		errors.Is(err, domain.ErrCustomerCedulaRequired),
		errors.Is(err, domain.ErrCartEmpty):
		return http.StatusUnprocessableEntity, errValidationText
	default:
		return http.StatusInternalServerError, errInternalText
	}
}
