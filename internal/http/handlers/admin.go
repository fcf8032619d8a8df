package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/models/dto"
	"github.com/brickvest/brickvest-be/internal/settlement"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// AdminHandler owns the platform administration surface: property review,
// user management, rent payouts, and the dashboard rollup.
type AdminHandler struct {
	store  storage.Store
	engine *settlement.Engine
	logger *logrus.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(store storage.Store, engine *settlement.Engine, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{store: store, engine: engine, logger: logger}
}

// Register attaches admin routes to the mux. Every route requires the admin
// role.
func (h *AdminHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("GET /api/admin/dashboard", authn.RequireAdmin(h.handleDashboard))
	mux.HandleFunc("GET /api/admin/properties", authn.RequireAdmin(h.handleListProperties))
	mux.HandleFunc("PUT /api/admin/properties/{id}/approve", authn.RequireAdmin(h.handleApproveProperty))
	mux.HandleFunc("PUT /api/admin/properties/{id}/reject", authn.RequireAdmin(h.handleRejectProperty))
	mux.HandleFunc("PUT /api/admin/properties/{id}/feature", authn.RequireAdmin(h.handleFeatureProperty))
	mux.HandleFunc("GET /api/admin/users", authn.RequireAdmin(h.handleListUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}/role", authn.RequireAdmin(h.handleUpdateRole))
	mux.HandleFunc("PUT /api/admin/users/{id}/toggle-active", authn.RequireAdmin(h.handleToggleActive))
	mux.HandleFunc("POST /api/admin/rent-payouts", authn.RequireAdmin(h.handleRentPayout))
	mux.HandleFunc("GET /api/admin/rent-payouts", authn.RequireAdmin(h.handleListRentPayouts))
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	investors, err := h.store.CountUsersByRole(ctx, models.RoleInvestor)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	sellers, err := h.store.CountUsersByRole(ctx, models.RoleSeller)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	pending, err := h.store.CountPropertiesByStatus(ctx, models.PropertyPending)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	approved, err := h.store.CountPropertiesByStatus(ctx, models.PropertyApproved)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	soldOut, err := h.store.CountPropertiesByStatus(ctx, models.PropertySoldOut)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	investedVolume, err := h.store.SumTransactionAmounts(ctx, models.TxTokenPurchase, models.TxCompleted)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	rentDistributed, err := h.store.SumTransactionAmounts(ctx, models.TxRentPayout, models.TxCompleted)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	transactionCount, err := h.store.CountTransactions(ctx)
	if err != nil {
		h.dashboardError(w, err)
		return
	}
	recent, err := h.store.ListRecentTransactions(ctx, 10)
	if err != nil {
		h.dashboardError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "dashboard fetched", map[string]any{
		"users": map[string]int64{
			"investors": investors,
			"sellers":   sellers,
		},
		"properties": map[string]int64{
			"pending":  pending,
			"approved": approved,
			"sold_out": soldOut,
		},
		"total_invested":      investedVolume,
		"total_rent_paid":     rentDistributed,
		"total_transactions":  transactionCount,
		"recent_transactions": recent,
	})
}

func (h *AdminHandler) dashboardError(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Error("build admin dashboard")
	respond.Error(w, http.StatusInternalServerError, "failed to build dashboard")
}

// handleListProperties lists across all statuses, unlike the public catalog.
func (h *AdminHandler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	filter := models.PropertyFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}

	properties, total, err := h.store.ListProperties(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("admin list properties")
		respond.Error(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	respond.JSON(w, http.StatusOK, "properties fetched", map[string]any{
		"properties": properties,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

func (h *AdminHandler) handleApproveProperty(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.UserFrom(r.Context())

	property, ok := h.loadProperty(w, r)
	if !ok {
		return
	}
	if property.Status != models.PropertyPending {
		respond.Error(w, http.StatusConflict, "only pending properties can be approved")
		return
	}

	now := time.Now()
	property.Status = models.PropertyApproved
	property.ApprovedBy = &admin.ID
	property.ApprovedAt = &now
	property.RejectionReason = ""

	updated, err := h.store.UpdateProperty(r.Context(), property)
	if err != nil {
		h.logger.WithError(err).Error("approve property")
		respond.Error(w, http.StatusInternalServerError, "failed to approve property")
		return
	}
	respond.JSON(w, http.StatusOK, "property approved", updated)
}

func (h *AdminHandler) handleRejectProperty(w http.ResponseWriter, r *http.Request) {
	property, ok := h.loadProperty(w, r)
	if !ok {
		return
	}
	if property.Status != models.PropertyPending {
		respond.Error(w, http.StatusConflict, "only pending properties can be rejected")
		return
	}

	var req dto.RejectPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		respond.Error(w, http.StatusBadRequest, "rejection reason is required")
		return
	}

	property.Status = models.PropertyRejected
	property.RejectionReason = reason

	updated, err := h.store.UpdateProperty(r.Context(), property)
	if err != nil {
		h.logger.WithError(err).Error("reject property")
		respond.Error(w, http.StatusInternalServerError, "failed to reject property")
		return
	}
	respond.JSON(w, http.StatusOK, "property rejected", updated)
}

func (h *AdminHandler) handleFeatureProperty(w http.ResponseWriter, r *http.Request) {
	property, ok := h.loadProperty(w, r)
	if !ok {
		return
	}
	if property.Status != models.PropertyApproved && property.Status != models.PropertySoldOut {
		respond.Error(w, http.StatusConflict, "only live properties can be featured")
		return
	}

	property.IsFeatured = !property.IsFeatured

	updated, err := h.store.UpdateProperty(r.Context(), property)
	if err != nil {
		h.logger.WithError(err).Error("feature property")
		respond.Error(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	respond.JSON(w, http.StatusOK, "property feature flag updated", updated)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	role := strings.TrimSpace(r.URL.Query().Get("role"))

	users, total, err := h.store.ListUsers(r.Context(), role, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("list users")
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respond.JSON(w, http.StatusOK, "users fetched", map[string]any{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AdminHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.UserFrom(r.Context())

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if user.ID == admin.ID {
		respond.Error(w, http.StatusConflict, "cannot change your own role")
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !models.ValidRole(req.Role) {
		respond.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	user.Role = req.Role
	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		h.logger.WithError(err).Error("update user role")
		respond.Error(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	respond.JSON(w, http.StatusOK, "role updated", updated)
}

func (h *AdminHandler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.UserFrom(r.Context())

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if user.ID == admin.ID {
		respond.Error(w, http.StatusConflict, "cannot deactivate yourself")
		return
	}

	user.IsActive = !user.IsActive
	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		h.logger.WithError(err).Error("toggle user active")
		respond.Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", updated)
}

func (h *AdminHandler) handleRentPayout(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.UserFrom(r.Context())

	var req dto.RentPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.PropertyID <= 0 {
		respond.Error(w, http.StatusBadRequest, "property_id is required")
		return
	}

	result, err := h.engine.ProcessRentPayout(r.Context(), settlement.PayoutRequest{
		PropertyID:  req.PropertyID,
		Month:       req.Month,
		Year:        req.Year,
		TotalRent:   req.TotalRent,
		ProcessedBy: admin.ID,
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		status := settlementStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("property_id", req.PropertyID).Error("process rent payout")
			respond.Error(w, status, "failed to process rent payout")
			return
		}
		respond.Error(w, status, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, "rent payout processed", result)
}

func (h *AdminHandler) handleListRentPayouts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var propertyID *int64
	if id := int64(queryInt(r, "property_id", 0)); id > 0 {
		propertyID = &id
	}

	payouts, total, err := h.store.ListRentPayouts(r.Context(), propertyID, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("list rent payouts")
		respond.Error(w, http.StatusInternalServerError, "failed to list rent payouts")
		return
	}
	respond.JSON(w, http.StatusOK, "rent payouts fetched", map[string]any{
		"payouts": payouts,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *AdminHandler) loadProperty(w http.ResponseWriter, r *http.Request) (models.Property, bool) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid property id")
		return models.Property{}, false
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "property not found")
			return models.Property{}, false
		}
		h.logger.WithError(err).Error("fetch property")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch property")
		return models.Property{}, false
	}
	return property, true
}

func (h *AdminHandler) loadUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return models.User{}, false
	}
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return models.User{}, false
		}
		h.logger.WithError(err).Error("fetch user")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return models.User{}, false
	}
	return user, true
}
