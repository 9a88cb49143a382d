package repository

import (
	"context"
	"fmt"

	"pickleradar/internal/data/entity"
	"pickleradar/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// FriendRow is a friend with just enough profile data for list views.
type FriendRow struct {
	UserID      uuid.UUID
	Username    string
	DisplayName string
	SkillLevel  *entity.SkillLevel
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, friendship *entity.Friendship) error
	FindRequest(ctx context.Context, id uuid.UUID) (*entity.Friendship, error)
	FindBetween(ctx context.Context, userA, userB uuid.UUID) (*entity.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.FriendshipStatus) error

	ListFriends(ctx context.Context, userID uuid.UUID) ([]FriendRow, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]*entity.Friendship, error)

	// ListFriendIDs feeds the notification fan-out: IDs of everyone who
	// accepted a friendship with the user, in either direction.
	ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type friendRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewFriendRepository(db database.PgxIface, log *zap.Logger) FriendRepository {
	return &friendRepository{
		db:  db,
		log: log.With(zap.String("repository", "friend")),
	}
}

func (r *friendRepository) CreateRequest(ctx context.Context, friendship *entity.Friendship) error {
	query := `
		INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		friendship.ID,
		friendship.RequesterID,
		friendship.AddresseeID,
		friendship.Status,
		friendship.CreatedAt,
		friendship.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Error("Failed to create friend request",
			zap.Error(err),
			zap.String("requester_id", friendship.RequesterID.String()),
			zap.String("addressee_id", friendship.AddresseeID.String()),
		)
		return fmt.Errorf("create friend request: %w", err)
	}

	return nil
}

func (r *friendRepository) FindRequest(ctx context.Context, id uuid.UUID) (*entity.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE id = $1
	`

	var friendship entity.Friendship
	err := r.db.QueryRow(ctx, query, id).Scan(
		&friendship.ID,
		&friendship.RequesterID,
		&friendship.AddresseeID,
		&friendship.Status,
		&friendship.CreatedAt,
		&friendship.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find friend request",
			zap.Error(err),
			zap.String("request_id", id.String()),
		)
		return nil, fmt.Errorf("find friend request %s: %w", id.String(), err)
	}

	return &friendship, nil
}

func (r *friendRepository) FindBetween(ctx context.Context, userA, userB uuid.UUID) (*entity.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`

	var friendship entity.Friendship
	err := r.db.QueryRow(ctx, query, userA, userB).Scan(
		&friendship.ID,
		&friendship.RequesterID,
		&friendship.AddresseeID,
		&friendship.Status,
		&friendship.CreatedAt,
		&friendship.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find friendship",
			zap.Error(err),
			zap.String("user_a", userA.String()),
			zap.String("user_b", userB.String()),
		)
		return nil, fmt.Errorf("find friendship between %s and %s: %w", userA.String(), userB.String(), err)
	}

	return &friendship, nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.FriendshipStatus) error {
	query := `UPDATE friendships SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update friendship status",
			zap.Error(err),
			zap.String("request_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update friendship %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("friend request %s not found", id.String())
	}

	return nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]FriendRow, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.skill_level
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.addressee_id = $1)
		  AND f.status = 'accepted'
		ORDER BY u.display_name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list friends",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list friends for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var friends []FriendRow
	for rows.Next() {
		var row FriendRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.DisplayName, &row.SkillLevel); err != nil {
			r.log.Error("Failed to scan friend row", zap.Error(err))
			return nil, fmt.Errorf("scan friend row: %w", err)
		}
		friends = append(friends, row)
	}

	return friends, nil
}

func (r *friendRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*entity.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE addressee_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list pending requests",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list pending requests for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var requests []*entity.Friendship
	for rows.Next() {
		var friendship entity.Friendship
		err := rows.Scan(
			&friendship.ID,
			&friendship.RequesterID,
			&friendship.AddresseeID,
			&friendship.Status,
			&friendship.CreatedAt,
			&friendship.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan friendship row", zap.Error(err))
			return nil, fmt.Errorf("scan friendship row: %w", err)
		}
		requests = append(requests, &friendship)
	}

	return requests, nil
}

func (r *friendRepository) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1)
		  AND status = 'accepted'
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list friend IDs",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list friend IDs for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.log.Error("Failed to scan friend ID", zap.Error(err))
			return nil, fmt.Errorf("scan friend ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
