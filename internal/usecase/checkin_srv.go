package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"
	"pickleradar/internal/dto/response"
	"pickleradar/internal/notify"
	"pickleradar/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// I/O deadlines. A store call past its bound fails the operation; a
// notification call past its bound is only logged.
const (
	storeTimeout  = 12 * time.Second
	notifyTimeout = 8 * time.Second
)

const defaultHistoryLimit = 20

type CheckInService interface {
	// CheckIn checks the user in at a court, or renews their check-in at
	// the same court. A user can hold at most one active check-in; the
	// result carries the blocking court on conflict.
	CheckIn(ctx context.Context, userID string, req *request.CheckInRequest) *response.CheckInResult

	// CheckOut ends the user's check-in at a court. Checking out of a court
	// the user is not checked in at succeeds as a no-op.
	CheckOut(ctx context.Context, userID string, req *request.CheckOutRequest) *response.CheckInResult

	GetActiveSession(ctx context.Context, userID string) (*response.ActiveCheckInResponse, error)
	History(ctx context.Context, userID string, limit int) ([]response.CheckInHistoryEntry, error)
}

type checkInService struct {
	repo     *repository.Repository
	notifier notify.Dispatcher
	log      *zap.Logger

	inflight     *inflightRegistry
	now          func() time.Time
	historyLimit int
}

func NewCheckInService(repo *repository.Repository, notifier notify.Dispatcher, log *zap.Logger, historyLimit int) CheckInService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &checkInService{
		repo:         repo,
		notifier:     notifier,
		log:          log.With(zap.String("service", "checkin")),
		inflight:     newInflightRegistry(),
		now:          time.Now,
		historyLimit: historyLimit,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, userID string, req *request.CheckInRequest) *response.CheckInResult {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Check-in validation failed", zap.Any("errors", errs))
		return failureResult("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return failureResult("Invalid user ID")
	}

	courtUUID, err := uuid.Parse(req.CourtID)
	if err != nil {
		return failureResult("Invalid court ID")
	}

	if !s.inflight.begin(userUUID) {
		return busyResult()
	}
	defer s.inflight.end(userUUID)

	now := s.now()

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	// Preflight: cheap rejection before touching the row. The database
	// constraint remains the arbiter under races.
	active, err := s.repo.CheckIn.FindActiveByUser(storeCtx, userUUID, now)
	if err != nil {
		s.log.Error("Failed to read active check-in",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return s.storeFailure(err)
	}

	if active != nil && active.CourtID != courtUUID {
		return s.conflictResult(ctx, active.CourtID)
	}

	courtName := s.resolveCourtName(ctx, courtUUID, "Unknown Court")

	expiresAt := now.Add(time.Duration(req.DurationMinutes) * time.Minute)

	// Renewal keeps the existing row's identity and tells us which reminder
	// to replace.
	existing, err := s.repo.CheckIn.FindByUserAndCourt(storeCtx, userUUID, courtUUID)
	if err != nil {
		s.log.Error("Failed to read existing check-in",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("court_id", req.CourtID),
		)
		return s.storeFailure(err)
	}

	id := uuid.New()
	var oldHandle *string
	if existing != nil {
		id = existing.ID
		oldHandle = existing.NotificationHandle
	}

	checkIn := &entity.CheckIn{
		ID:              id,
		UserID:          userUUID,
		CourtID:         courtUUID,
		SkillLevel:      entity.SkillLevel(req.SkillLevel),
		DurationMinutes: req.DurationMinutes,
		Active:          true,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
	}

	if err := s.repo.CheckIn.Upsert(storeCtx, checkIn); err != nil {
		if errors.Is(err, repository.ErrActiveCheckInExists) {
			// Lost a race with a concurrent check-in for this user. Report
			// the winner's court, same as the preflight rejection.
			winner, readErr := s.repo.CheckIn.FindActiveByUser(storeCtx, userUUID, s.now())
			if readErr == nil && winner != nil {
				return s.conflictResult(ctx, winner.CourtID)
			}
			return &response.CheckInResult{
				Success: false,
				Code:    response.CodeAlreadyCheckedIn,
				Error:   "You're already checked in at another court. Check out there first.",
			}
		}

		s.log.Error("Failed to persist check-in",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("court_id", req.CourtID),
		)
		return s.storeFailure(err)
	}

	s.log.Info("Checked in",
		zap.String("user_id", userID),
		zap.String("court_id", req.CourtID),
		zap.String("court_name", courtName),
		zap.String("skill_level", req.SkillLevel),
		zap.Int("duration_minutes", req.DurationMinutes),
		zap.Bool("renewal", existing != nil),
	)

	// Side effects are fire-and-forget: the check-in already succeeded.
	go s.afterCheckIn(userUUID, courtUUID, courtName, oldHandle, checkIn)

	return &response.CheckInResult{Success: true, CourtName: courtName}
}

// afterCheckIn replaces the expiry reminder and fans out to friends.
// Runs detached from the request; failures are logged, never surfaced.
func (s *checkInService) afterCheckIn(userID, courtID uuid.UUID, courtName string, oldHandle *string, checkIn *entity.CheckIn) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if oldHandle != nil {
		if err := s.notifier.CancelReminder(ctx, *oldHandle); err != nil {
			s.log.Warn("Failed to cancel previous reminder",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		}
	}

	reminder := fmt.Sprintf("Your time at %s is up. You've been checked out automatically.", courtName)
	handle, err := s.notifier.ScheduleReminder(ctx, userID.String(), reminder, checkIn.ExpiresAt)
	if err != nil {
		s.log.Warn("Failed to schedule reminder",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	} else {
		storeCtx, storeCancel := context.WithTimeout(context.Background(), storeTimeout)
		defer storeCancel()

		if err := s.repo.CheckIn.SetNotificationHandle(storeCtx, userID, courtID, &handle); err != nil {
			s.log.Warn("Failed to store reminder handle",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		}
	}

	event := notify.CheckInCreatedEvent{
		UserID:          userID.String(),
		DisplayName:     s.resolveDisplayName(ctx, userID),
		CourtID:         courtID.String(),
		CourtName:       courtName,
		SkillLevel:      string(checkIn.SkillLevel),
		DurationMinutes: checkIn.DurationMinutes,
		ExpiresAt:       checkIn.ExpiresAt,
		CheckedInAt:     checkIn.CreatedAt,
	}
	if err := s.notifier.NotifyFriendsOfCheckIn(ctx, event); err != nil {
		s.log.Warn("Failed to notify friends of check-in",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	}
}

func (s *checkInService) CheckOut(ctx context.Context, userID string, req *request.CheckOutRequest) *response.CheckInResult {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Check-out validation failed", zap.Any("errors", errs))
		return failureResult("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return failureResult("Invalid user ID")
	}

	courtUUID, err := uuid.Parse(req.CourtID)
	if err != nil {
		return failureResult("Invalid court ID")
	}

	if !s.inflight.begin(userUUID) {
		return busyResult()
	}
	defer s.inflight.end(userUUID)

	now := s.now()

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	// Absence is fine: checkout is idempotent.
	existing, err := s.repo.CheckIn.FindByUserAndCourt(storeCtx, userUUID, courtUUID)
	if err != nil {
		s.log.Error("Failed to read check-in for checkout",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("court_id", req.CourtID),
		)
		return s.storeFailure(err)
	}

	courtName := req.CourtName
	if courtName == "" {
		courtName = s.resolveCourtName(ctx, courtUUID, "Unknown Court")
	}

	if err := s.repo.CheckIn.Deactivate(storeCtx, userUUID, courtUUID, now); err != nil {
		s.log.Error("Failed to deactivate check-in",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("court_id", req.CourtID),
		)
		return s.storeFailure(err)
	}

	s.log.Info("Checked out",
		zap.String("user_id", userID),
		zap.String("court_id", req.CourtID),
		zap.String("court_name", courtName),
		zap.Bool("had_check_in", existing != nil),
	)

	var oldHandle *string
	if existing != nil {
		oldHandle = existing.NotificationHandle
	}
	go s.afterCheckOut(userUUID, courtUUID, courtName, oldHandle, now)

	return &response.CheckInResult{Success: true, CourtName: courtName}
}

// afterCheckOut cancels the pending reminder, confirms to the user and
// fans out to friends. Fire-and-forget, same as afterCheckIn.
func (s *checkInService) afterCheckOut(userID, courtID uuid.UUID, courtName string, oldHandle *string, checkedOutAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if oldHandle != nil {
		if err := s.notifier.CancelReminder(ctx, *oldHandle); err != nil {
			s.log.Warn("Failed to cancel reminder on checkout",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		}
	}

	confirmation := notify.PushMessage{
		UserID:  userID.String(),
		Message: fmt.Sprintf("You checked out of %s.", courtName),
	}
	if err := s.notifier.SendImmediate(ctx, confirmation); err != nil {
		s.log.Warn("Failed to send checkout confirmation",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	}

	event := notify.CheckInRemovedEvent{
		UserID:       userID.String(),
		DisplayName:  s.resolveDisplayName(ctx, userID),
		CourtID:      courtID.String(),
		CourtName:    courtName,
		CheckedOutAt: checkedOutAt,
	}
	if err := s.notifier.NotifyFriendsOfCheckOut(ctx, event); err != nil {
		s.log.Warn("Failed to notify friends of checkout",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	}
}

func (s *checkInService) GetActiveSession(ctx context.Context, userID string) (*response.ActiveCheckInResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	now := s.now()

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	checkIn, err := s.repo.CheckIn.FindActiveByUser(storeCtx, userUUID, now)
	if err != nil {
		s.log.Error("Failed to get active check-in",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get active check-in: %w", err)
	}

	if checkIn == nil {
		return nil, nil
	}

	courtName := s.resolveCourtName(ctx, checkIn.CourtID, "Unknown Court")

	return &response.ActiveCheckInResponse{
		ID:              checkIn.ID.String(),
		CourtID:         checkIn.CourtID.String(),
		CourtName:       courtName,
		SkillLevel:      checkIn.SkillLevel,
		DurationMinutes: checkIn.DurationMinutes,
		CheckedInAt:     checkIn.CreatedAt,
		ExpiresAt:       checkIn.ExpiresAt,
		Remaining:       RemainingTime(checkIn.ExpiresAt, now),
	}, nil
}

func (s *checkInService) History(ctx context.Context, userID string, limit int) ([]response.CheckInHistoryEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	if limit <= 0 {
		limit = s.historyLimit
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rows, err := s.repo.CheckIn.ListHistory(storeCtx, userUUID, limit)
	if err != nil {
		s.log.Error("Failed to list check-in history",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("list check-in history: %w", err)
	}

	entries := make([]response.CheckInHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = response.CheckInHistoryEntry{
			ID:          row.ID.String(),
			CourtID:     row.CourtID.String(),
			CourtName:   row.CourtName,
			SkillLevel:  row.SkillLevel,
			CheckedInAt: row.CheckedInAt,
		}
	}

	return entries, nil
}

// RemainingTime breaks the time left until expiry into display units.
// Never negative: an expired check-in has zero remaining.
func RemainingTime(expiresAt, now time.Time) response.RemainingTime {
	totalMinutes := int(expiresAt.Sub(now) / time.Minute)
	if totalMinutes < 0 {
		totalMinutes = 0
	}

	return response.RemainingTime{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
	}
}

// ==================== HELPER METHODS ====================

// conflictResult builds the ALREADY_CHECKED_IN rejection. The blocking
// court's name is looked up for the client; a failed lookup degrades to a
// placeholder instead of failing the whole operation.
func (s *checkInService) conflictResult(ctx context.Context, courtID uuid.UUID) *response.CheckInResult {
	courtName := s.resolveCourtName(ctx, courtID, "another court")

	return &response.CheckInResult{
		Success:   false,
		Code:      response.CodeAlreadyCheckedIn,
		CourtID:   courtID.String(),
		CourtName: courtName,
		Error:     fmt.Sprintf("You're already checked in at %s. Check out there first.", courtName),
	}
}

func (s *checkInService) resolveCourtName(ctx context.Context, courtID uuid.UUID, fallback string) string {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	name, err := s.repo.Court.FindName(storeCtx, courtID)
	if err != nil || name == "" {
		if err != nil {
			s.log.Warn("Failed to resolve court name",
				zap.Error(err),
				zap.String("court_id", courtID.String()),
			)
		}
		return fallback
	}

	return name
}

func (s *checkInService) resolveDisplayName(ctx context.Context, userID uuid.UUID) string {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		return "A friend"
	}
	return user.DisplayName
}

func (s *checkInService) storeFailure(err error) *response.CheckInResult {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureResult("The request timed out. Please try again.")
	}
	return failureResult("Something went wrong. Please try again.")
}

func failureResult(message string) *response.CheckInResult {
	return &response.CheckInResult{Success: false, Error: message}
}

func busyResult() *response.CheckInResult {
	return &response.CheckInResult{
		Success: false,
		Code:    response.CodeOperationInFlight,
		Error:   "Another check-in is still processing. Please wait.",
	}
}
