package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"pickleradar/internal/dto/request"
	"pickleradar/internal/usecase"
	"pickleradar/pkg/utils"

	"go.uber.org/zap"
)

type FriendHandler struct {
	service usecase.FriendService
	log     *zap.Logger
}

func NewFriendHandler(service usecase.FriendService, log *zap.Logger) *FriendHandler {
	return &FriendHandler{
		service: service,
		log:     log.With(zap.String("handler", "friend")),
	}
}

// SendRequest handles POST /api/friends/requests (protected)
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.FriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	friendRequest, err := h.service.SendRequest(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "send friend request")
		return
	}

	utils.ResponseCreated(w, "success", friendRequest)
}

// Respond handles PUT /api/friends/requests (protected)
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RespondFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	friendRequest, err := h.service.Respond(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "respond to friend request")
		return
	}

	utils.ResponseSuccess(w, "success", friendRequest)
}

// ListFriends handles GET /api/friends (protected)
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "list friends")
		return
	}

	utils.ResponseSuccess(w, "success", friends)
}

// ListPending handles GET /api/friends/requests (protected)
func (h *FriendHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	requests, err := h.service.ListPending(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "list pending requests")
		return
	}

	utils.ResponseSuccess(w, "success", requests)
}

func (h *FriendHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
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

	case strings.Contains(errMsg, "already"),
		strings.Contains(errMsg, "cannot"):
		h.log.Warn(operation+" failed - invalid state",
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
