package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// InvestmentHandler serves the authenticated investor's portfolio views.
type InvestmentHandler struct {
	store  storage.PortfolioStore
	logger *logrus.Logger
}

// NewInvestmentHandler constructs the handler.
func NewInvestmentHandler(store storage.PortfolioStore, logger *logrus.Logger) *InvestmentHandler {
	return &InvestmentHandler{store: store, logger: logger}
}

// Register attaches portfolio routes to the mux.
func (h *InvestmentHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("GET /api/investments", authn.Protect(h.handleList))
	mux.HandleFunc("GET /api/investments/summary", authn.Protect(h.handleSummary))
	mux.HandleFunc("GET /api/investments/{id}", authn.Protect(h.handleGet))
}

type investmentView struct {
	models.Investment
	CurrentValue     float64 `json:"current_value"`
	MonthlyRentShare float64 `json:"monthly_rent_share"`
	ProfitLoss       float64 `json:"profit_loss"`
}

type portfolioSummary struct {
	PortfolioValue   float64 `json:"portfolio_value"`
	TotalInvested    float64 `json:"total_invested"`
	MonthlyIncome    float64 `json:"monthly_income"`
	TotalRentEarned  float64 `json:"total_rent_earned"`
	TotalReturn      float64 `json:"total_return"`
	ReturnPercentage float64 `json:"return_percentage"`
	PropertiesOwned  int     `json:"properties_owned"`
	TotalTokensOwned int64   `json:"total_tokens_owned"`
}

func (h *InvestmentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	investments, err := h.store.ListInvestments(r.Context(), user.ID)
	if err != nil {
		h.logger.WithError(err).Error("list investments")
		respond.Error(w, http.StatusInternalServerError, "failed to list investments")
		return
	}

	views := make([]investmentView, 0, len(investments))
	for _, inv := range investments {
		views = append(views, investmentView{
			Investment:       inv,
			CurrentValue:     inv.CurrentValue(),
			MonthlyRentShare: inv.MonthlyRentShare(),
			ProfitLoss:       inv.ProfitLoss(),
		})
	}
	respond.JSON(w, http.StatusOK, "investments fetched", views)
}

func (h *InvestmentHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	investments, err := h.store.ListInvestments(r.Context(), user.ID)
	if err != nil {
		h.logger.WithError(err).Error("summarize investments")
		respond.Error(w, http.StatusInternalServerError, "failed to summarize investments")
		return
	}

	var summary portfolioSummary
	for _, inv := range investments {
		summary.TotalInvested += inv.Ownership.TotalInvested
		summary.PortfolioValue += inv.CurrentValue()
		summary.TotalRentEarned += inv.Ownership.RentEarned
		summary.MonthlyIncome += inv.MonthlyRentShare()
		summary.TotalTokensOwned += inv.Ownership.TokensOwned
	}
	// Total return counts both appreciation and rent already collected.
	summary.TotalReturn = summary.PortfolioValue - summary.TotalInvested + summary.TotalRentEarned
	if summary.TotalInvested > 0 {
		summary.ReturnPercentage = summary.TotalReturn / summary.TotalInvested * 100
	}
	summary.PropertiesOwned = len(investments)

	respond.JSON(w, http.StatusOK, "portfolio summary fetched", summary)
}

// handleGet serves one investment by property id.
func (h *InvestmentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	propertyID, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid property id")
		return
	}

	ownership, err := h.store.GetOwnership(r.Context(), user.ID, propertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "investment not found")
			return
		}
		h.logger.WithError(err).Error("fetch investment")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch investment")
		return
	}
	respond.JSON(w, http.StatusOK, "investment fetched", ownership)
}
