package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models/dto"
	"github.com/brickvest/brickvest-be/internal/settlement"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// TransactionHandler owns the token purchase endpoint and journal lookups.
type TransactionHandler struct {
	engine  *settlement.Engine
	journal storage.JournalStore
	logger  *logrus.Logger
}

// NewTransactionHandler constructs the handler.
func NewTransactionHandler(engine *settlement.Engine, journal storage.JournalStore, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{engine: engine, journal: journal, logger: logger}
}

// Register attaches transaction routes to the mux.
func (h *TransactionHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("POST /api/transactions/buy-tokens", authn.Protect(h.handleBuyTokens))
	mux.HandleFunc("GET /api/transactions", authn.Protect(h.handleList))
	mux.HandleFunc("GET /api/transactions/{id}", authn.Protect(h.handleGet))
}

// handleList serves the user's full journal with an optional comma-separated
// type filter.
func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	limit, offset := pagination(r)

	var types []string
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				types = append(types, trimmed)
			}
		}
	}

	transactions, total, err := h.journal.ListTransactionsByUser(r.Context(), user.ID, types, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("list transactions")
		respond.Error(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respond.JSON(w, http.StatusOK, "transactions fetched", map[string]any{
		"transactions": transactions,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *TransactionHandler) handleBuyTokens(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req dto.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.PropertyID <= 0 {
		respond.Error(w, http.StatusBadRequest, "property_id is required")
		return
	}

	result, err := h.engine.PurchaseTokens(r.Context(), user.ID, req.PropertyID, req.Tokens)
	if err != nil {
		status := settlementStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":     user.ID,
				"property_id": req.PropertyID,
			}).Error("purchase tokens")
			respond.Error(w, status, "failed to complete purchase")
			return
		}
		respond.Error(w, status, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, "purchase successful", result)
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	transaction, err := h.journal.GetTransaction(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.WithError(err).Error("fetch transaction")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch transaction")
		return
	}
	respond.JSON(w, http.StatusOK, "transaction fetched", transaction)
}
