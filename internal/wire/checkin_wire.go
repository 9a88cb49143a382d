package wire

import (
	"pickleradar/internal/adaptor"
	"pickleradar/internal/data/repository"
	"pickleradar/pkg/middleware"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCheckIn(
	r chi.Router,
	checkInHandler *adaptor.CheckInHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/checkin - Check in at a court
		r.Post("/api/checkin", checkInHandler.CheckIn)

		// POST /api/checkout - Check out of a court
		r.Post("/api/checkout", checkInHandler.CheckOut)

		// GET /api/checkin/active - Current check-in, if any
		r.Get("/api/checkin/active", checkInHandler.GetActive)

		// GET /api/checkin/history - Recent check-ins, newest first
		r.Get("/api/checkin/history", checkInHandler.GetHistory)
	})
}
