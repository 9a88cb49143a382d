package repository

import (
	"pickleradar/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Court   CourtRepository
	CheckIn CheckInRepository
	Friend  FriendRepository
}

// NewRepository wires all repositories. rdb may be nil; only the court
// name cache uses it.
func NewRepository(db database.PgxIface, rdb *redis.Client, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Court:   NewCourtRepository(db, rdb, log),
		CheckIn: NewCheckInRepository(db, log),
		Friend:  NewFriendRepository(db, log),
	}
}
