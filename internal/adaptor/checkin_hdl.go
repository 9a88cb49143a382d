package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"pickleradar/internal/dto/request"
	"pickleradar/internal/dto/response"
	"pickleradar/internal/usecase"
	"pickleradar/pkg/utils"

	"go.uber.org/zap"
)

type CheckInHandler struct {
	service usecase.CheckInService
	log     *zap.Logger
}

func NewCheckInHandler(service usecase.CheckInService, log *zap.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkin")),
	}
}

// CheckIn handles POST /api/checkin (protected)
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result := h.service.CheckIn(r.Context(), userID.String(), &req)
	h.writeResult(w, result)
}

// CheckOut handles POST /api/checkout (protected)
func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result := h.service.CheckOut(r.Context(), userID.String(), &req)
	h.writeResult(w, result)
}

// GetActive handles GET /api/checkin/active (protected)
func (h *CheckInHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	active, err := h.service.GetActiveSession(r.Context(), userID.String())
	if err != nil {
		h.log.Error("Failed to get active check-in", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	// No active check-in is a normal answer, not an error.
	utils.ResponseSuccess(w, "success", active)
}

// GetHistory handles GET /api/checkin/history (protected)
func (h *CheckInHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	limit := utils.ParseInt(r.URL.Query().Get("limit"), 0)

	history, err := h.service.History(r.Context(), userID.String(), limit)
	if err != nil {
		h.log.Error("Failed to get check-in history", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

// writeResult maps a check-in/check-out outcome to the HTTP status the
// client expects: 409 for conflicts, 429 for in-flight duplicates.
func (h *CheckInHandler) writeResult(w http.ResponseWriter, result *response.CheckInResult) {
	if result.Success {
		utils.ResponseSuccess(w, "success", result)
		return
	}

	switch result.Code {
	case response.CodeAlreadyCheckedIn:
		utils.ResponseConflict(w, result.Error, result)

	case response.CodeOperationInFlight:
		utils.ResponseTooManyRequests(w, result.Error)

	default:
		if strings.Contains(result.Error, "Validation failed") ||
			strings.Contains(result.Error, "Invalid") {
			utils.ResponseBadRequest(w, result.Error, nil)
			return
		}
		utils.ResponseInternalError(w, result.Error)
	}
}
