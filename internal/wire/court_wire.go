package wire

import (
	"pickleradar/internal/adaptor"
	"pickleradar/internal/data/repository"
	"pickleradar/pkg/middleware"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCourt(
	r chi.Router,
	courtHandler *adaptor.CourtHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/courts - Browse courts with city/indoor/min_courts filters
	r.Get("/api/courts", courtHandler.ListCourts)

	// GET /api/courts/{id} - Court detail with who's playing now
	r.Get("/api/courts/{id}", courtHandler.GetCourt)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/courts", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Post("/", courtHandler.CreateCourt)
		r.Put("/{id}", courtHandler.UpdateCourt)
		r.Delete("/{id}", courtHandler.DeleteCourt)
	})
}
