package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the JSON API, health check and metrics endpoint.
func NewRouter(svc Service, log *slog.Logger) *mux.Router {
	h := NewHandler(svc, log)

	r := mux.NewRouter()
	r.Use(withRequestID, withLogging(h.log))

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc(epSummary, h.GetSummary).Methods(http.MethodGet)
	v1.HandleFunc(epCategories, h.GetCategories).Methods(http.MethodGet)
	v1.HandleFunc(epAccount, h.GetAccount).Methods(http.MethodGet)

	return r
}
