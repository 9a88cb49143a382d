package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CourtFilter narrows court listings. Nil fields are ignored.
type CourtFilter struct {
	City      *string
	Indoor    *bool
	MinCourts *int
}

type CourtRepository interface {
	Create(ctx context.Context, court *entity.Court) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error)

	// FindName resolves a court's display name, read-through cached in
	// Redis when a client is configured.
	FindName(ctx context.Context, id uuid.UUID) (string, error)

	FindAll(ctx context.Context, limit, offset int, filter CourtFilter) ([]*entity.Court, error)
	CountAll(ctx context.Context, filter CourtFilter) (int64, error)
	Update(ctx context.Context, court *entity.Court) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const nameCacheTTL = 10 * time.Minute

type courtRepository struct {
	db  database.PgxIface
	rdb *redis.Client // nil disables the name cache
	log *zap.Logger
}

func NewCourtRepository(db database.PgxIface, rdb *redis.Client, log *zap.Logger) CourtRepository {
	return &courtRepository{
		db:  db,
		rdb: rdb,
		log: log.With(zap.String("repository", "court")),
	}
}

func (r *courtRepository) Create(ctx context.Context, court *entity.Court) error {
	query := `
		INSERT INTO courts (id, name, address, city, latitude, longitude, court_count, indoor, lighted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		court.ID,
		court.Name,
		court.Address,
		court.City,
		court.Latitude,
		court.Longitude,
		court.CourtCount,
		court.Indoor,
		court.Lighted,
		court.CreatedAt,
		court.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create court",
			zap.Error(err),
			zap.String("name", court.Name),
			zap.String("city", court.City),
		)
		return fmt.Errorf("create court %s: %w", court.Name, err)
	}

	return nil
}

func (r *courtRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error) {
	query := `
		SELECT id, name, address, city, latitude, longitude, court_count, indoor, lighted, created_at, updated_at
		FROM courts
		WHERE id = $1
	`

	var court entity.Court
	err := r.db.QueryRow(ctx, query, id).Scan(
		&court.ID,
		&court.Name,
		&court.Address,
		&court.City,
		&court.Latitude,
		&court.Longitude,
		&court.CourtCount,
		&court.Indoor,
		&court.Lighted,
		&court.CreatedAt,
		&court.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find court by ID",
			zap.Error(err),
			zap.String("court_id", id.String()),
		)
		return nil, fmt.Errorf("find court by ID %s: %w", id.String(), err)
	}

	return &court, nil
}

func (r *courtRepository) FindName(ctx context.Context, id uuid.UUID) (string, error) {
	cacheKey := "court:name:" + id.String()

	if r.rdb != nil {
		if name, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil && name != "" {
			return name, nil
		}
	}

	query := `SELECT name FROM courts WHERE id = $1`

	var name string
	err := r.db.QueryRow(ctx, query, id).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.log.Error("Failed to find court name",
			zap.Error(err),
			zap.String("court_id", id.String()),
		)
		return "", fmt.Errorf("find court name %s: %w", id.String(), err)
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, cacheKey, name, nameCacheTTL).Err(); err != nil {
			r.log.Warn("Failed to cache court name", zap.Error(err))
		}
	}

	return name, nil
}

func (r *courtRepository) FindAll(ctx context.Context, limit, offset int, filter CourtFilter) ([]*entity.Court, error) {
	query := `
		SELECT id, name, address, city, latitude, longitude, court_count, indoor, lighted, created_at, updated_at
		FROM courts
	`

	where, args := buildCourtFilter(filter)
	query += where
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find courts",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find courts: %w", err)
	}
	defer rows.Close()

	var courts []*entity.Court
	for rows.Next() {
		var court entity.Court
		err := rows.Scan(
			&court.ID,
			&court.Name,
			&court.Address,
			&court.City,
			&court.Latitude,
			&court.Longitude,
			&court.CourtCount,
			&court.Indoor,
			&court.Lighted,
			&court.CreatedAt,
			&court.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan court row", zap.Error(err))
			return nil, fmt.Errorf("scan court row: %w", err)
		}
		courts = append(courts, &court)
	}

	return courts, nil
}

func (r *courtRepository) CountAll(ctx context.Context, filter CourtFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM courts`

	where, args := buildCourtFilter(filter)
	query += where

	var count int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count courts", zap.Error(err))
		return 0, fmt.Errorf("count courts: %w", err)
	}

	return count, nil
}

func (r *courtRepository) Update(ctx context.Context, court *entity.Court) error {
	query := `
		UPDATE courts
		SET name = $2, address = $3, city = $4, latitude = $5, longitude = $6,
		    court_count = $7, indoor = $8, lighted = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		court.ID,
		court.Name,
		court.Address,
		court.City,
		court.Latitude,
		court.Longitude,
		court.CourtCount,
		court.Indoor,
		court.Lighted,
		court.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update court",
			zap.Error(err),
			zap.String("court_id", court.ID.String()),
		)
		return fmt.Errorf("update court %s: %w", court.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("court %s not found", court.ID.String())
	}

	// The cached name may be stale now.
	if r.rdb != nil {
		if err := r.rdb.Del(ctx, "court:name:"+court.ID.String()).Err(); err != nil {
			r.log.Warn("Failed to evict court name cache", zap.Error(err))
		}
	}

	return nil
}

func (r *courtRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM courts WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete court",
			zap.Error(err),
			zap.String("court_id", id.String()),
		)
		return fmt.Errorf("delete court %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("court %s not found", id.String())
	}

	if r.rdb != nil {
		if err := r.rdb.Del(ctx, "court:name:"+id.String()).Err(); err != nil {
			r.log.Warn("Failed to evict court name cache", zap.Error(err))
		}
	}

	r.log.Info("Court deleted", zap.String("court_id", id.String()))
	return nil
}

func buildCourtFilter(filter CourtFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.City != nil {
		args = append(args, *filter.City)
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if filter.Indoor != nil {
		args = append(args, *filter.Indoor)
		conditions = append(conditions, fmt.Sprintf("indoor = $%d", len(args)))
	}
	if filter.MinCourts != nil {
		args = append(args, *filter.MinCourts)
		conditions = append(conditions, fmt.Sprintf("court_count >= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
