package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voidshard/ledgerview/pkg/domain"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerview_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerview_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})
)

const (
	epSummary    = "/users/{userID}/summary"
	epAccount    = "/accounts/{linkID}"
	epCategories = "/accounts/{linkID}/categories"
)

// Service is what the API serves. *aggregator.Aggregator satisfies it.
type Service interface {
	Summary(ctx context.Context, userID string) (*domain.AggregateSummary, error)
	AccountDetail(ctx context.Context, linkID string) (*domain.AccountDetail, error)
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log.With("component", "api")}
}

// accountPage is one page of an account's merged feed.
type accountPage struct {
	Account *domain.AccountSnapshot `json:"account"`
	*domain.FeedPage
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("GET", epSummary))
	defer timer.ObserveDuration()

	sum, err := h.svc.Summary(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.respondFailure(w, r, err, epSummary)
		return
	}
	h.respondJSON(w, http.StatusOK, sum, "GET", epSummary)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("GET", epAccount))
	defer timer.ObserveDuration()

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "page must be a positive integer", "GET", epAccount)
			return
		}
		page = n
	}

	detail, err := h.svc.AccountDetail(r.Context(), mux.Vars(r)["linkID"])
	if err != nil {
		h.respondFailure(w, r, err, epAccount)
		return
	}
	h.respondJSON(w, http.StatusOK, &accountPage{
		Account:  detail.Account,
		FeedPage: domain.Paginate(detail.Transactions, page, domain.DefaultPageSize),
	}, "GET", epAccount)
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("GET", epCategories))
	defer timer.ObserveDuration()

	detail, err := h.svc.AccountDetail(r.Context(), mux.Vars(r)["linkID"])
	if err != nil {
		h.respondFailure(w, r, err, epCategories)
		return
	}
	h.respondJSON(w, http.StatusOK, domain.CountCategories(detail.Transactions), "GET", epCategories)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// statusOf maps an error kind onto an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrProvider):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, err error, endpoint string) {
	code := statusOf(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", "endpoint", endpoint, "request_id", RequestID(r.Context()), "err", err)
		if code == http.StatusInternalServerError {
			msg = http.StatusText(code)
		}
	}
	h.respondError(w, code, msg, r.Method, endpoint)
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Warn("encode response", "endpoint", endpoint, "err", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
