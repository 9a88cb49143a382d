package wire

import (
	"pickleradar/internal/adaptor"
	"pickleradar/internal/data/repository"
	"pickleradar/pkg/middleware"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/user/profile - View own profile
		r.Get("/api/user/profile", userHandler.GetProfile)

		// PUT /api/user/profile - Update display name, skill level, home city
		r.Put("/api/user/profile", userHandler.UpdateProfile)
	})
}
