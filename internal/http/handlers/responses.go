package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/brickvest/brickvest-be/internal/settlement"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respondJSON: %v", err)
	}
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// pagination clamps limit/offset query parameters to sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// settlementStatus maps settlement failures to HTTP status codes. Unknown
// errors map to 500 so callers can log before responding.
func settlementStatus(err error) int {
	switch {
	case errors.Is(err, settlement.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, settlement.ErrNotAvailable),
		errors.Is(err, settlement.ErrInsufficientInventory),
		errors.Is(err, settlement.ErrInsufficientFunds),
		errors.Is(err, settlement.ErrNoInvestors),
		errors.Is(err, settlement.ErrInvalidAmount),
		errors.Is(err, settlement.ErrInvalidPeriod),
		errors.Is(err, settlement.ErrDepositLimit):
		return http.StatusBadRequest
	case errors.Is(err, settlement.ErrSelfTradeForbidden),
		errors.Is(err, settlement.ErrWalletLocked):
		return http.StatusForbidden
	case errors.Is(err, settlement.ErrAlreadyProcessed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
