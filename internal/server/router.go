package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pterm/pterm"
)

func newRouter(h *handlers, metrics http.Handler, limiter *clientLimiter, logger *pterm.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger(logger))

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimit(limiter))
	api.HandleFunc("/transactions", h.listTransactions).Methods(http.MethodGet)
	api.HandleFunc("/status", h.getStatus).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return router
}
