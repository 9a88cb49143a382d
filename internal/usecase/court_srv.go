package usecase

import (
	"context"
	"fmt"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"
	"pickleradar/internal/dto/response"
	"pickleradar/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CourtService interface {
	Create(ctx context.Context, req *request.CreateCourtRequest) (*response.CourtResponse, error)

	// GetDetail returns the court with its currently checked-in players.
	GetDetail(ctx context.Context, courtID uuid.UUID) (*response.CourtDetailResponse, error)

	List(ctx context.Context, page request.PaginatedRequest, filter repository.CourtFilter) (*response.PaginatedResponse[response.CourtResponse], error)
	Update(ctx context.Context, courtID uuid.UUID, req *request.UpdateCourtRequest) (*response.CourtResponse, error)
	Delete(ctx context.Context, courtID uuid.UUID) error
}

type courtService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCourtService(repo *repository.Repository, log *zap.Logger) CourtService {
	return &courtService{
		repo: repo,
		log:  log.With(zap.String("service", "court")),
		now:  time.Now,
	}
}

func (s *courtService) Create(ctx context.Context, req *request.CreateCourtRequest) (*response.CourtResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := s.now()
	court := &entity.Court{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CourtCount: req.CourtCount,
		Indoor:     req.Indoor,
		Lighted:    req.Lighted,
	}

	if err := s.repo.Court.Create(ctx, court); err != nil {
		return nil, fmt.Errorf("create court: %w", err)
	}

	s.log.Info("Court created",
		zap.String("court_id", court.ID.String()),
		zap.String("name", court.Name),
		zap.String("city", court.City),
	)

	resp := response.CourtToResponse(court, 0)
	return &resp, nil
}

func (s *courtService) GetDetail(ctx context.Context, courtID uuid.UUID) (*response.CourtDetailResponse, error) {
	court, err := s.repo.Court.FindByID(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("find court: %w", err)
	}
	if court == nil {
		return nil, fmt.Errorf("court not found")
	}

	now := s.now()
	rows, err := s.repo.CheckIn.ListActiveByCourt(ctx, courtID, now)
	if err != nil {
		return nil, fmt.Errorf("list active players: %w", err)
	}

	players := make([]response.ActivePlayerResponse, len(rows))
	for i, row := range rows {
		players[i] = response.ActivePlayerResponse{
			UserID:      row.UserID.String(),
			DisplayName: row.DisplayName,
			SkillLevel:  row.SkillLevel,
			CheckedInAt: row.CheckedInAt,
			Remaining:   RemainingTime(row.ExpiresAt, now),
		}
	}

	return &response.CourtDetailResponse{
		CourtResponse: response.CourtToResponse(court, int64(len(players))),
		Players:       players,
	}, nil
}

func (s *courtService) List(ctx context.Context, page request.PaginatedRequest, filter repository.CourtFilter) (*response.PaginatedResponse[response.CourtResponse], error) {
	courts, err := s.repo.Court.FindAll(ctx, page.Limit(), page.Offset(), filter)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}

	total, err := s.repo.Court.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count courts: %w", err)
	}

	now := s.now()
	items := make([]response.CourtResponse, len(courts))
	for i, court := range courts {
		count, err := s.repo.CheckIn.CountActiveByCourt(ctx, court.ID, now)
		if err != nil {
			// The listing is still useful without the occupancy number.
			s.log.Warn("Failed to count active players",
				zap.Error(err),
				zap.String("court_id", court.ID.String()),
			)
			count = 0
		}
		items[i] = response.CourtToResponse(court, count)
	}

	return response.NewPaginatedResponse(items, page.Page, page.Limit(), total), nil
}

func (s *courtService) Update(ctx context.Context, courtID uuid.UUID, req *request.UpdateCourtRequest) (*response.CourtResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	court, err := s.repo.Court.FindByID(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("find court: %w", err)
	}
	if court == nil {
		return nil, fmt.Errorf("court not found")
	}

	court.Name = req.Name
	court.Address = req.Address
	court.City = req.City
	court.Latitude = req.Latitude
	court.Longitude = req.Longitude
	court.CourtCount = req.CourtCount
	court.Indoor = req.Indoor
	court.Lighted = req.Lighted
	court.UpdatedAt = s.now()

	if err := s.repo.Court.Update(ctx, court); err != nil {
		return nil, fmt.Errorf("update court: %w", err)
	}

	s.log.Info("Court updated", zap.String("court_id", courtID.String()))

	count, err := s.repo.CheckIn.CountActiveByCourt(ctx, courtID, s.now())
	if err != nil {
		count = 0
	}

	resp := response.CourtToResponse(court, count)
	return &resp, nil
}

func (s *courtService) Delete(ctx context.Context, courtID uuid.UUID) error {
	court, err := s.repo.Court.FindByID(ctx, courtID)
	if err != nil {
		return fmt.Errorf("find court: %w", err)
	}
	if court == nil {
		return fmt.Errorf("court not found")
	}

	if err := s.repo.Court.Delete(ctx, courtID); err != nil {
		return fmt.Errorf("delete court: %w", err)
	}

	return nil
}
