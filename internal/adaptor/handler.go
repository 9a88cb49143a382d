package adaptor

import (
	"pickleradar/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Court   *CourtHandler
	CheckIn *CheckInHandler
	Friend  *FriendHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Court:   NewCourtHandler(service.Court, log),
		CheckIn: NewCheckInHandler(service.CheckIn, log),
		Friend:  NewFriendHandler(service.Friend, log),
	}
}
