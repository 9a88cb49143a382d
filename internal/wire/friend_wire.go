package wire

import (
	"pickleradar/internal/adaptor"
	"pickleradar/internal/data/repository"
	"pickleradar/pkg/middleware"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireFriend(
	r chi.Router,
	friendHandler *adaptor.FriendHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/friends - Accepted friends
		r.Get("/api/friends", friendHandler.ListFriends)

		// GET /api/friends/requests - Pending requests addressed to the user
		r.Get("/api/friends/requests", friendHandler.ListPending)

		// POST /api/friends/requests - Send a friend request
		r.Post("/api/friends/requests", friendHandler.SendRequest)

		// PUT /api/friends/requests - Accept or decline a request
		r.Put("/api/friends/requests", friendHandler.Respond)
	})
}
