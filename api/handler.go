// Package api exposes the ledger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"partnerledger/models"
	"partnerledger/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// maxBodyBytes bounds append request bodies
const maxBodyBytes = 1 << 16

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// asOfLayouts are the ?date= forms without a UTC offset; they are read in the ledger's zone
var asOfLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LedgerHandler serves the partner balance endpoints
type LedgerHandler struct {
	ledger service.LedgerService
	health HealthChecker
	loc    *time.Location
}

// NewLedgerHandler creates a new ledger handler. health may be nil; a nil loc means UTC.
func NewLedgerHandler(ledger service.LedgerService, health HealthChecker, loc *time.Location) *LedgerHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerHandler{ledger: ledger, health: health, loc: loc}
}

type balanceResponse struct {
	PartnerID int64           `json:"partner_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type appendRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Date   *time.Time       `json:"date,omitempty"`
}

// GetBalance answers the current balance, or the balance as of ?date= when given
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDParam(w, r)
	if !ok {
		return
	}

	var (
		balance decimal.Decimal
		err     error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		asOf, parseErr := h.parseAsOf(raw)
		if parseErr != nil {
			Error(w, http.StatusBadRequest, "date must be an RFC 3339 timestamp, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
			return
		}
		balance, err = h.ledger.BalanceAsOf(r.Context(), partnerID, asOf)
	} else {
		balance, err = h.ledger.CurrentBalance(r.Context(), partnerID)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, balanceResponse{PartnerID: partnerID, Balance: balance})
}

// PostBalance appends a signed amount to the partner's log
func (h *LedgerHandler) PostBalance(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDParam(w, r)
	if !ok {
		return
	}

	var req appendRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == nil {
		Error(w, http.StatusBadRequest, "amount is required")
		return
	}

	if _, err := h.ledger.Append(r.Context(), partnerID, *req.Amount, req.Date); err != nil {
		writeServiceError(w, r, err)
		return
	}

	OK(w)
}

// ListTransactions returns the partner's raw log, newest first
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	transactions, err := h.ledger.Transactions(r.Context(), partnerID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}

	JSON(w, http.StatusOK, transactions)
}

// ListRollups returns the partner's daily rollups, oldest day first
func (h *LedgerHandler) ListRollups(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDParam(w, r)
	if !ok {
		return
	}

	rollups, err := h.ledger.Rollups(r.Context(), partnerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rollups == nil {
		rollups = []*models.DailyRollup{}
	}

	JSON(w, http.StatusOK, rollups)
}

// Healthz reports liveness and, when a checker is configured, database reachability
func (h *LedgerHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	JSON(w, http.StatusOK, map[string]string{"state": "up"})
}

// parseAsOf reads a ?date= value. Query decoding turns an unescaped '+' offset into a space,
// which is put back before giving up on RFC 3339.
func (h *LedgerHandler) parseAsOf(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if i := strings.LastIndexByte(raw, ' '); i > 0 {
		if t, err := time.Parse(time.RFC3339Nano, raw[:i]+"+"+raw[i+1:]); err == nil {
			return t, nil
		}
	}
	for _, layout := range asOfLayouts {
		if t, err := time.ParseInLocation(layout, raw, h.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func partnerIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	partnerID, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
	if err != nil || partnerID <= 0 {
		Error(w, http.StatusBadRequest, "invalid partner id")
		return 0, false
	}
	return partnerID, true
}

// writeServiceError maps ledger errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(w, http.StatusNotFound, "partner not found")
	case errors.Is(err, service.ErrInvalidAmount):
		Error(w, http.StatusBadRequest, "amount must have at most 4 decimal places and 28 integer digits")
	case errors.Is(err, service.ErrBalanceOutOfRange):
		Error(w, http.StatusUnprocessableEntity, "resulting balance is out of range, nothing was recorded")
	case errors.Is(err, service.ErrConstraintViolation):
		Error(w, http.StatusConflict, "conflicting write, nothing was recorded")
	case errors.Is(err, service.ErrStorageUnavailable):
		Error(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
	default:
		log.WithError(err).WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("Request failed")
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
