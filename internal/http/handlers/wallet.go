package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/models/dto"
	"github.com/brickvest/brickvest-be/internal/settlement"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// WalletHandler owns wallet balance, deposit, withdrawal, and transaction
// history endpoints. Money movements go through the settlement engine.
type WalletHandler struct {
	engine  *settlement.Engine
	journal storage.JournalStore
	logger  *logrus.Logger
}

// NewWalletHandler constructs the handler.
func NewWalletHandler(engine *settlement.Engine, journal storage.JournalStore, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{engine: engine, journal: journal, logger: logger}
}

// Register attaches wallet routes to the mux.
func (h *WalletHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("GET /api/wallet", authn.Protect(h.handleGet))
	mux.HandleFunc("POST /api/wallet/deposit", authn.Protect(h.handleDeposit))
	mux.HandleFunc("POST /api/wallet/withdraw", authn.Protect(h.handleWithdraw))
	mux.HandleFunc("GET /api/wallet/transactions", authn.Protect(h.handleTransactions))
}

func (h *WalletHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	wallet, err := h.engine.Wallet(r.Context(), user.ID)
	if err != nil {
		h.logger.WithError(err).Error("fetch wallet")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch wallet")
		return
	}
	respond.JSON(w, http.StatusOK, "wallet fetched", wallet)
}

func (h *WalletHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.engine.Deposit(r.Context(), user.ID, req.Amount, strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		status := settlementStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("user_id", user.ID).Error("deposit")
			respond.Error(w, status, "failed to process deposit")
			return
		}
		respond.Error(w, status, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, "deposit successful", result)
}

func (h *WalletHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.engine.Withdraw(r.Context(), user.ID, req.Amount, strings.TrimSpace(req.BankName))
	if err != nil {
		status := settlementStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("user_id", user.ID).Error("withdraw")
			respond.Error(w, status, "failed to process withdrawal")
			return
		}
		respond.Error(w, status, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, "withdrawal successful", result)
}

func (h *WalletHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	limit, offset := pagination(r)

	// Without an explicit filter this view shows only cash movements; token
	// purchases live under /api/transactions.
	types := []string{models.TxWalletDeposit, models.TxWalletWithdrawal, models.TxRentPayout}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		types = types[:0]
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
