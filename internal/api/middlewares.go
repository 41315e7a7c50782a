package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Middleware — сквозные обработчики HTTP-запросов точки продаж.
type Middleware struct {
	logger *log.Entry
}

// NewMiddleware создаёт набор middleware с общим logger.
func NewMiddleware() *Middleware {
	return &Middleware{
		logger: log.WithField("component", "http"),
	}
}

// Cors разрешает запросы браузерного фронтенда с другого origin.
func (m *Middleware) Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Origin, Accept, User-Agent, Cache-Control")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Log пишет строку доступа на каждый запрос.
func (m *Middleware) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := uuid.NewString()

		next.ServeHTTP(w, r)

		m.logger.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(started).String(),
		}).Info("http request")
	})
}

// Recover перехватывает панику обработчика и отвечает 500.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.WithFields(log.Fields{
					"panic": rec,
					"stack": string(debug.Stack()),
				}).Error("panic in http handler")
				http.Error(w, errInternalText, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
