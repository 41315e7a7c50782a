package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter собирает маршруты точки продаж.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/settings", h.GetSettings)
		r.Put("/settings/rate", h.SaveRate)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Delete("/items/{imei}", h.RemoveCartItem)
			r.Put("/customer", h.SetCustomer)
			r.Put("/financing", h.SetFinancing)
			r.Put("/observations", h.SetObservations)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.RequestCheckout)
			r.Post("/cancel", h.CancelCheckout)
			r.Post("/confirm", h.ConfirmCheckout)
			r.Post("/acknowledge", h.AcknowledgeSale)
		})

		r.Get("/sales", h.History)
		r.Get("/receipts/{saleID}", h.Receipt)
	})

	return mux
}
