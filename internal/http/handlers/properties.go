package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/models/dto"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// PropertyHandler owns the public property catalog and the seller's listing
// management endpoints.
type PropertyHandler struct {
	store  storage.PropertyStore
	logger *logrus.Logger
}

// NewPropertyHandler constructs the handler.
func NewPropertyHandler(store storage.PropertyStore, logger *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{store: store, logger: logger}
}

// Register attaches property routes to the mux.
func (h *PropertyHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("GET /api/properties", h.handleList)
	mux.HandleFunc("GET /api/properties/featured", h.handleFeatured)
	mux.HandleFunc("GET /api/properties/{id}", h.handleGet)

	mux.HandleFunc("POST /api/properties", authn.RequireRole(models.RoleSeller, h.handleCreate))
	mux.HandleFunc("PUT /api/properties/{id}", authn.RequireRole(models.RoleSeller, h.handleUpdate))
	mux.HandleFunc("DELETE /api/properties/{id}", authn.RequireRole(models.RoleSeller, h.handleDelete))
	mux.HandleFunc("GET /api/seller/properties", authn.RequireRole(models.RoleSeller, h.handleSellerList))
}

// handleList serves the public catalog. Only approved and sold out listings
// are visible here regardless of the status filter.
func (h *PropertyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	status := strings.TrimSpace(query.Get("status"))
	if status != models.PropertySoldOut {
		status = models.PropertyApproved
	}
	filter := models.PropertyFilter{
		Status:       status,
		PropertyType: strings.TrimSpace(query.Get("property_type")),
		City:         strings.TrimSpace(query.Get("city")),
		Search:       strings.TrimSpace(query.Get("search")),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := query.Get("min_price"); raw != "" {
		if minPrice, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &minPrice
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		if maxPrice, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &maxPrice
		}
	}

	properties, total, err := h.store.ListProperties(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("list properties")
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

func (h *PropertyHandler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	properties, err := h.store.ListFeaturedProperties(r.Context(), queryInt(r, "limit", 6))
	if err != nil {
		h.logger.WithError(err).Error("list featured properties")
		respond.Error(w, http.StatusInternalServerError, "failed to list featured properties")
		return
	}
	respond.JSON(w, http.StatusOK, "featured properties fetched", properties)
}

func (h *PropertyHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "property not found")
			return
		}
		h.logger.WithError(err).Error("fetch property")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch property")
		return
	}
	respond.JSON(w, http.StatusOK, "property fetched", property)
}

func (h *PropertyHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req dto.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validatePropertyRequest(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	property := models.Property{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		PropertyType:    req.PropertyType,
		Address:         strings.TrimSpace(req.Address),
		City:            strings.TrimSpace(req.City),
		State:           strings.TrimSpace(req.State),
		ZipCode:         strings.TrimSpace(req.ZipCode),
		Country:         strings.TrimSpace(req.Country),
		TotalValue:      req.TotalValue,
		TotalTokens:     req.TotalTokens,
		TokensAvailable: req.TotalTokens,
		MonthlyRent:     req.MonthlyRent,
		SellerID:        user.ID,
		Status:          models.PropertyPending,
	}
	property.RecalculateDerived()

	created, err := h.store.CreateProperty(r.Context(), property)
	if err != nil {
		h.logger.WithError(err).Error("create property")
		respond.Error(w, http.StatusInternalServerError, "failed to create property")
		return
	}
	respond.JSON(w, http.StatusCreated, "property submitted for approval", created)
}

// handleUpdate edits a listing that has not gone live. Approved or sold out
// properties are immutable to the seller because investors priced in the
// listed terms.
func (h *PropertyHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid property id")
		return
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "property not found")
			return
		}
		h.logger.WithError(err).Error("fetch property")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch property")
		return
	}
	if property.SellerID != user.ID {
		respond.Error(w, http.StatusForbidden, "not your property")
		return
	}
	if property.Status != models.PropertyPending && property.Status != models.PropertyRejected {
		respond.Error(w, http.StatusConflict, "only pending or rejected properties can be edited")
		return
	}

	var req dto.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	applyPropertyUpdate(&property, req)

	// Resubmit edited rejections for a fresh review.
	if property.Status == models.PropertyRejected {
		property.Status = models.PropertyPending
		property.RejectionReason = ""
	}

	updated, err := h.store.UpdateProperty(r.Context(), property)
	if err != nil {
		h.logger.WithError(err).Error("update property")
		respond.Error(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	respond.JSON(w, http.StatusOK, "property updated", updated)
}

func (h *PropertyHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid property id")
		return
	}
	property, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "property not found")
			return
		}
		h.logger.WithError(err).Error("fetch property")
		respond.Error(w, http.StatusInternalServerError, "failed to fetch property")
		return
	}
	if property.SellerID != user.ID {
		respond.Error(w, http.StatusForbidden, "not your property")
		return
	}
	if property.TokensSold > 0 {
		respond.Error(w, http.StatusConflict, "cannot delete a property with sold tokens")
		return
	}

	if err := h.store.DeleteProperty(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("delete property")
		respond.Error(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	respond.JSON(w, http.StatusOK, "property deleted", nil)
}

func (h *PropertyHandler) handleSellerList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	properties, err := h.store.ListPropertiesBySeller(r.Context(), user.ID)
	if err != nil {
		h.logger.WithError(err).Error("list seller properties")
		respond.Error(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	respond.JSON(w, http.StatusOK, "properties fetched", properties)
}

func validatePropertyRequest(req dto.CreatePropertyRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	switch req.PropertyType {
	case models.PropertyResidential, models.PropertyCommercial, models.PropertyIndustrial, models.PropertyLand:
	default:
		return errors.New("invalid property type")
	}
	if req.TotalValue <= 0 {
		return errors.New("total_value must be positive")
	}
	if req.TotalTokens <= 0 {
		return errors.New("total_tokens must be positive")
	}
	if req.MonthlyRent < 0 {
		return errors.New("monthly_rent cannot be negative")
	}
	return nil
}

func applyPropertyUpdate(p *models.Property, req dto.UpdatePropertyRequest) {
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		p.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		p.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		p.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Country != nil {
		p.Country = strings.TrimSpace(*req.Country)
	}
	if req.TotalValue != nil && *req.TotalValue > 0 {
		p.TotalValue = *req.TotalValue
	}
	// Token supply can only change before any tokens are sold, which holds
	// for every editable status.
	if req.TotalTokens != nil && *req.TotalTokens > 0 && p.TokensSold == 0 {
		p.TotalTokens = *req.TotalTokens
		p.TokensAvailable = *req.TotalTokens
	}
	if req.MonthlyRent != nil && *req.MonthlyRent >= 0 {
		p.MonthlyRent = *req.MonthlyRent
	}
	p.RecalculateDerived()
}
