package repository

import (
	"context"
	"fmt"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CheckInHistoryRow is the read-model row behind the check-in history
// endpoint: the stored check-in joined with the court's display name.
type CheckInHistoryRow struct {
	ID              uuid.UUID
	CourtID         uuid.UUID
	CourtName       string
	SkillLevel      entity.SkillLevel
	DurationMinutes int
	CheckedInAt     time.Time
}

// ActivePlayerRow is one currently checked-in player at a court.
type ActivePlayerRow struct {
	UserID      uuid.UUID
	DisplayName string
	SkillLevel  entity.SkillLevel
	CheckedInAt time.Time
	ExpiresAt   time.Time
}

type CheckInRepository interface {
	// FindActiveByUser returns the user's current check-in, filtered on
	// expires_at > now. At most one row can match.
	FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (*entity.CheckIn, error)
	FindByUserAndCourt(ctx context.Context, userID, courtID uuid.UUID) (*entity.CheckIn, error)

	// Upsert inserts a check-in or renews the existing (user, court) row in
	// place. Returns ErrActiveCheckInExists when the active-per-user unique
	// index rejects the write.
	Upsert(ctx context.Context, checkIn *entity.CheckIn) error

	// Deactivate marks the (user, court) row checked out. Missing rows are
	// not an error.
	Deactivate(ctx context.Context, userID, courtID uuid.UUID, now time.Time) error

	SetNotificationHandle(ctx context.Context, userID, courtID uuid.UUID, handle *string) error

	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]CheckInHistoryRow, error)
	ListActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) ([]ActivePlayerRow, error)
	CountActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) (int64, error)
}

type checkInRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCheckInRepository(db database.PgxIface, log *zap.Logger) CheckInRepository {
	return &checkInRepository{
		db:  db,
		log: log.With(zap.String("repository", "checkin")),
	}
}

func (r *checkInRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (*entity.CheckIn, error) {
	query := `
		SELECT id, user_id, court_id, skill_level, duration_minutes, active, notification_handle, created_at, expires_at
		FROM check_ins
		WHERE user_id = $1 AND active AND expires_at > $2
	`

	var checkIn entity.CheckIn
	err := r.db.QueryRow(ctx, query, userID, now).Scan(
		&checkIn.ID,
		&checkIn.UserID,
		&checkIn.CourtID,
		&checkIn.SkillLevel,
		&checkIn.DurationMinutes,
		&checkIn.Active,
		&checkIn.NotificationHandle,
		&checkIn.CreatedAt,
		&checkIn.ExpiresAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active check-in",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find active check-in for user %s: %w", userID.String(), err)
	}

	return &checkIn, nil
}

func (r *checkInRepository) FindByUserAndCourt(ctx context.Context, userID, courtID uuid.UUID) (*entity.CheckIn, error) {
	query := `
		SELECT id, user_id, court_id, skill_level, duration_minutes, active, notification_handle, created_at, expires_at
		FROM check_ins
		WHERE user_id = $1 AND court_id = $2
	`

	var checkIn entity.CheckIn
	err := r.db.QueryRow(ctx, query, userID, courtID).Scan(
		&checkIn.ID,
		&checkIn.UserID,
		&checkIn.CourtID,
		&checkIn.SkillLevel,
		&checkIn.DurationMinutes,
		&checkIn.Active,
		&checkIn.NotificationHandle,
		&checkIn.CreatedAt,
		&checkIn.ExpiresAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find check-in",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("court_id", courtID.String()),
		)
		return nil, fmt.Errorf("find check-in for user %s court %s: %w", userID.String(), courtID.String(), err)
	}

	return &checkIn, nil
}

func (r *checkInRepository) Upsert(ctx context.Context, checkIn *entity.CheckIn) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin check-in upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	// Clear active flags left behind by check-ins that expired without an
	// explicit checkout, so the partial unique index only guards rows that
	// are genuinely current.
	release := `
		UPDATE check_ins
		SET active = false
		WHERE user_id = $1 AND active AND expires_at <= $2
	`
	if _, err := tx.Exec(ctx, release, checkIn.UserID, checkIn.CreatedAt); err != nil {
		r.log.Error("Failed to release expired check-ins",
			zap.Error(err),
			zap.String("user_id", checkIn.UserID.String()),
		)
		return fmt.Errorf("release expired check-ins for user %s: %w", checkIn.UserID.String(), err)
	}

	query := `
		INSERT INTO check_ins (id, user_id, court_id, skill_level, duration_minutes, active, notification_handle, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, $7, $8)
		ON CONFLICT (user_id, court_id) DO UPDATE
		SET skill_level         = EXCLUDED.skill_level,
		    duration_minutes    = EXCLUDED.duration_minutes,
		    active              = true,
		    notification_handle = EXCLUDED.notification_handle,
		    created_at          = EXCLUDED.created_at,
		    expires_at          = EXCLUDED.expires_at
	`

	_, err = tx.Exec(ctx, query,
		checkIn.ID,
		checkIn.UserID,
		checkIn.CourtID,
		checkIn.SkillLevel,
		checkIn.DurationMinutes,
		checkIn.NotificationHandle,
		checkIn.CreatedAt,
		checkIn.ExpiresAt,
	)

	if err != nil {
		// uq_check_ins_active_user fires when a concurrent check-in won the
		// race for this user at another court.
		if isUniqueViolation(err) {
			r.log.Warn("Check-in rejected by active-per-user constraint",
				zap.String("user_id", checkIn.UserID.String()),
				zap.String("court_id", checkIn.CourtID.String()),
				zap.String("constraint", uniqueConstraintName(err)),
			)
			return ErrActiveCheckInExists
		}

		r.log.Error("Failed to upsert check-in",
			zap.Error(err),
			zap.String("user_id", checkIn.UserID.String()),
			zap.String("court_id", checkIn.CourtID.String()),
		)
		return fmt.Errorf("upsert check-in for user %s court %s: %w", checkIn.UserID.String(), checkIn.CourtID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrActiveCheckInExists
		}
		return fmt.Errorf("commit check-in upsert: %w", err)
	}

	return nil
}

func (r *checkInRepository) Deactivate(ctx context.Context, userID, courtID uuid.UUID, now time.Time) error {
	query := `
		UPDATE check_ins
		SET active = false, expires_at = LEAST(expires_at, $3)
		WHERE user_id = $1 AND court_id = $2
	`

	// Zero rows affected is fine: checkout is idempotent.
	_, err := r.db.Exec(ctx, query, userID, courtID, now)
	if err != nil {
		r.log.Error("Failed to deactivate check-in",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("court_id", courtID.String()),
		)
		return fmt.Errorf("deactivate check-in for user %s court %s: %w", userID.String(), courtID.String(), err)
	}

	return nil
}

func (r *checkInRepository) SetNotificationHandle(ctx context.Context, userID, courtID uuid.UUID, handle *string) error {
	query := `
		UPDATE check_ins
		SET notification_handle = $3
		WHERE user_id = $1 AND court_id = $2
	`

	_, err := r.db.Exec(ctx, query, userID, courtID, handle)
	if err != nil {
		r.log.Error("Failed to set notification handle",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("court_id", courtID.String()),
		)
		return fmt.Errorf("set notification handle for user %s court %s: %w", userID.String(), courtID.String(), err)
	}

	return nil
}

func (r *checkInRepository) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]CheckInHistoryRow, error) {
	query := `
		SELECT ci.id, ci.court_id, COALESCE(c.name, 'Unknown Court'), ci.skill_level, ci.duration_minutes, ci.created_at
		FROM check_ins ci
		LEFT JOIN courts c ON c.id = ci.court_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list check-in history",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("list check-in history for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var history []CheckInHistoryRow
	for rows.Next() {
		var row CheckInHistoryRow
		err := rows.Scan(
			&row.ID,
			&row.CourtID,
			&row.CourtName,
			&row.SkillLevel,
			&row.DurationMinutes,
			&row.CheckedInAt,
		)
		if err != nil {
			r.log.Error("Failed to scan history row", zap.Error(err))
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history = append(history, row)
	}

	return history, nil
}

func (r *checkInRepository) ListActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) ([]ActivePlayerRow, error) {
	query := `
		SELECT ci.user_id, u.display_name, ci.skill_level, ci.created_at, ci.expires_at
		FROM check_ins ci
		JOIN users u ON u.id = ci.user_id
		WHERE ci.court_id = $1 AND ci.active AND ci.expires_at > $2
		ORDER BY ci.created_at
	`

	rows, err := r.db.Query(ctx, query, courtID, now)
	if err != nil {
		r.log.Error("Failed to list active players",
			zap.Error(err),
			zap.String("court_id", courtID.String()),
		)
		return nil, fmt.Errorf("list active players at court %s: %w", courtID.String(), err)
	}
	defer rows.Close()

	var players []ActivePlayerRow
	for rows.Next() {
		var row ActivePlayerRow
		err := rows.Scan(
			&row.UserID,
			&row.DisplayName,
			&row.SkillLevel,
			&row.CheckedInAt,
			&row.ExpiresAt,
		)
		if err != nil {
			r.log.Error("Failed to scan active player row", zap.Error(err))
			return nil, fmt.Errorf("scan active player row: %w", err)
		}
		players = append(players, row)
	}

	return players, nil
}

func (r *checkInRepository) CountActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM check_ins WHERE court_id = $1 AND active AND expires_at > $2`

	var count int64
	err := r.db.QueryRow(ctx, query, courtID, now).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count active check-ins",
			zap.Error(err),
			zap.String("court_id", courtID.String()),
		)
		return 0, fmt.Errorf("count active check-ins at court %s: %w", courtID.String(), err)
	}

	return count, nil
}
