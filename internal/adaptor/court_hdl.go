package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"
	"pickleradar/internal/usecase"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CourtHandler struct {
	service usecase.CourtService
	log     *zap.Logger
}

func NewCourtHandler(service usecase.CourtService, log *zap.Logger) *CourtHandler {
	return &CourtHandler{
		service: service,
		log:     log.With(zap.String("handler", "court")),
	}
}

// ListCourts handles GET /api/courts (public)
func (h *CourtHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	var filter repository.CourtFilter
	if city := query.Get("city"); city != "" {
		filter.City = &city
	}
	filter.Indoor = utils.ParseBool(query.Get("indoor"))
	if minCourts := query.Get("min_courts"); minCourts != "" {
		n := utils.ParseInt(minCourts, 0)
		if n > 0 {
			filter.MinCourts = &n
		}
	}

	courts, err := h.service.List(r.Context(), page, filter)
	if err != nil {
		h.handleServiceError(w, err, "list courts")
		return
	}

	utils.ResponseSuccess(w, "success", courts)
}

// GetCourt handles GET /api/courts/{id} (public)
func (h *CourtHandler) GetCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid court ID", nil)
		return
	}

	court, err := h.service.GetDetail(r.Context(), courtID)
	if err != nil {
		h.handleServiceError(w, err, "get court")
		return
	}

	utils.ResponseSuccess(w, "success", court)
}

// ==================== ADMIN METHODS ====================

// CreateCourt handles POST /api/admin/courts (admin only)
func (h *CourtHandler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCourtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	court, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create court")
		return
	}

	utils.ResponseCreated(w, "success", court)
}

// UpdateCourt handles PUT /api/admin/courts/{id} (admin only)
func (h *CourtHandler) UpdateCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid court ID", nil)
		return
	}

	var req request.UpdateCourtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	court, err := h.service.Update(r.Context(), courtID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update court")
		return
	}

	utils.ResponseSuccess(w, "success", court)
}

// DeleteCourt handles DELETE /api/admin/courts/{id} (admin only)
func (h *CourtHandler) DeleteCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid court ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), courtID); err != nil {
		h.handleServiceError(w, err, "delete court")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *CourtHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
