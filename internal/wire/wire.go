package wire

import (
	"net/http"

	"pickleradar/internal/adaptor"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/notify"
	"pickleradar/internal/usecase"
	"pickleradar/pkg/middleware"
	"pickleradar/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds the service layer and hangs every route off one router.
func Wiring(repo *repository.Repository, notifier notify.Dispatcher, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, notifier, logger, config)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireCourt(r, handler.Court, repo, config, logger)
	wireCheckIn(r, handler.CheckIn, repo, config, logger)
	wireFriend(r, handler.Friend, repo, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
