package usecase

import (
	"pickleradar/internal/data/repository"
	"pickleradar/internal/notify"
	"pickleradar/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles every use case behind one constructor for wiring.
type Service struct {
	Auth    AuthService
	User    UserService
	Court   CourtService
	CheckIn CheckInService
	Friend  FriendService
}

func NewService(repo *repository.Repository, notifier notify.Dispatcher, log *zap.Logger, config *utils.Config) *Service {
	return &Service{
		Auth:    NewAuthService(repo, log, config.Session.ExpiryHours),
		User:    NewUserService(repo, log),
		Court:   NewCourtService(repo, log),
		CheckIn: NewCheckInService(repo, notifier, log, config.CheckIn.HistoryLimit),
		Friend:  NewFriendService(repo, log),
	}
}
