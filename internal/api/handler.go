package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/checkout/internal/catalog"
	"github.com/eugenenazirov/checkout/internal/checkout"
	"github.com/eugenenazirov/checkout/internal/metrics"
	"github.com/eugenenazirov/checkout/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	strategyGreedy  = "greedy"
	strategyOptimal = "optimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler wires catalog storage into HTTP handlers.
type Handler struct {
	storage        storage.Storage
	metrics        *metrics.CheckoutMetrics
	optimalLimiter rateLimiter

	clock func() time.Time

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics records checkout outcomes on m.
func WithMetrics(m *metrics.CheckoutMetrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithOptimalRateLimit bounds how often the optimal strategy may run. A
// non-positive rate or burst lifts the bound.
func WithOptimalRateLimit(ratePerSecond float64, burst int) HandlerOption {
	return func(h *Handler) {
		h.optimalLimiter = optionalLimiter(ratePerSecond, burst)
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:        store,
		optimalLimiter: newTokenBucketLimiter(defaultOptimalRPS, defaultOptimalBurst),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp, err := h.catalogResponse("")
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error())
		return
	}

	if err := h.storage.SetCatalog(catalog.Catalog{Items: req.Items}); err != nil {
		if errors.Is(err, catalog.ErrInvalidCatalog) {
			writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markCatalogUpdated()
	h.metrics.ObserveCatalogUpdate()

	resp, err := h.catalogResponse("Catalog updated successfully")
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if req.Strategy == "" {
		req.Strategy = strategyGreedy
	}
	if !h.allowStrategy(req.Strategy) {
		writeRateLimited(w, "optimal pricing rate limit exceeded",
			fmt.Sprintf("Retry shortly or use the %q strategy", strategyGreedy))
		return
	}

	pricer, err := h.storage.GetPricer()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	var receipt checkout.Receipt
	if req.Strategy == strategyOptimal {
		receipt, err = pricer.Optimal(req.Basket)
	} else {
		receipt, err = pricer.Total(req.Basket)
	}
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidSKU):
			h.metrics.ObserveCheckout(req.Strategy, metrics.ResultInvalid, elapsed, receipt)
			writeError(w, http.StatusBadRequest, "Invalid basket", err.Error(),
				`Use comma separated SKU tokens such as "3A,2B,C"`)
		case errors.Is(err, checkout.ErrUnknownItem):
			h.metrics.ObserveCheckout(req.Strategy, metrics.ResultInvalid, elapsed, receipt)
			writeError(w, http.StatusUnprocessableEntity, "Unknown item", err.Error())
		case errors.Is(err, checkout.ErrOverflow):
			h.metrics.ObserveCheckout(req.Strategy, metrics.ResultInvalid, elapsed, receipt)
			writeError(w, http.StatusUnprocessableEntity, "Basket total too large", err.Error())
		case errors.Is(err, checkout.ErrSearchTooLarge):
			h.metrics.ObserveCheckout(req.Strategy, metrics.ResultError, elapsed, receipt)
			writeError(w, http.StatusUnprocessableEntity, "Basket too large", err.Error(),
				fmt.Sprintf("Retry with the %q strategy", strategyGreedy))
		default:
			h.metrics.ObserveCheckout(req.Strategy, metrics.ResultError, elapsed, receipt)
			writeInternalError(w, err)
		}
		return
	}
	h.metrics.ObserveCheckout(req.Strategy, metrics.ResultOK, elapsed, receipt)

	resp := checkoutResponse{
		Basket:            req.Basket,
		Strategy:          req.Strategy,
		Total:             receipt.Total,
		Deals:             make([]appliedDealResponse, 0, len(receipt.Deals)),
		Leftover:          make([]lineItemResponse, 0, len(receipt.Leftover)),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	for _, d := range receipt.Deals {
		resp.Deals = append(resp.Deals, appliedDealResponse{Deal: d.Text, Count: d.Count, Subtotal: d.Subtotal})
	}
	for _, l := range receipt.Leftover {
		resp.Leftover = append(resp.Leftover, lineItemResponse{
			SKU:       l.Item,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) catalogResponse(message string) (catalogResponse, error) {
	cat, err := h.storage.GetCatalog()
	if err != nil {
		return catalogResponse{}, err
	}
	pricer, err := h.storage.GetPricer()
	if err != nil {
		return catalogResponse{}, err
	}

	resp := catalogResponse{
		Items:         cat.Items,
		Deals:         make([]dealResponse, 0),
		RejectedDeals: make([]rejectedDealResponse, 0),
		UpdatedAt:     h.currentCatalogUpdatedAt(),
		Message:       message,
	}
	for _, d := range pricer.Deals() {
		resp.Deals = append(resp.Deals, dealResponse{
			Deal:         d.Text,
			Kind:         string(d.Kind),
			SKU:          d.Item,
			Requirements: d.Requirements,
			Cost:         d.Cost,
			Saving:       d.Saving,
		})
	}
	for _, d := range pricer.Rejected() {
		resp.RejectedDeals = append(resp.RejectedDeals, rejectedDealResponse{
			SKU:    d.Item,
			Deal:   d.Text,
			Reason: d.Err.Error(),
		})
	}
	return resp, nil
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// decodeJSON reads a JSON body into dst and validates its struct tags.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("unable to parse JSON payload")
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

type catalogRequest struct {
	Items []catalog.Item `json:"items" validate:"required,min=1,dive"`
}

type checkoutRequest struct {
	Basket   string `json:"basket" validate:"max=10000"`
	Strategy string `json:"strategy" validate:"omitempty,oneof=greedy optimal"`
}

type checkoutResponse struct {
	Basket            string                `json:"basket"`
	Strategy          string                `json:"strategy"`
	Total             int                   `json:"total"`
	Deals             []appliedDealResponse `json:"deals"`
	Leftover          []lineItemResponse    `json:"leftover"`
	CalculationTimeMs int64                 `json:"calculationTimeMs"`
}

type appliedDealResponse struct {
	Deal     string `json:"deal"`
	Count    int    `json:"count"`
	Subtotal int    `json:"subtotal"`
}

type lineItemResponse struct {
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unitPrice"`
	Subtotal  int    `json:"subtotal"`
}

type catalogResponse struct {
	Items         []catalog.Item         `json:"items"`
	Deals         []dealResponse         `json:"deals"`
	RejectedDeals []rejectedDealResponse `json:"rejectedDeals"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Message       string                 `json:"message,omitempty"`
}

type dealResponse struct {
	Deal         string         `json:"deal"`
	Kind         string         `json:"kind"`
	SKU          string         `json:"sku"`
	Requirements map[string]int `json:"requirements"`
	Cost         int            `json:"cost"`
	Saving       int            `json:"saving"`
}

type rejectedDealResponse struct {
	SKU    string `json:"sku"`
	Deal   string `json:"deal"`
	Reason string `json:"reason"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
