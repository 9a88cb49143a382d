package entity

import (
	"time"

	"github.com/google/uuid"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
)

// CheckIn is a user's occupancy of a court for a bounded time window.
// One row per (user, court); a renewed check-in updates the row in place.
// The row survives checkout and expiry so the history projection keeps it.
type CheckIn struct {
	ID                 uuid.UUID  `db:"id"`
	UserID             uuid.UUID  `db:"user_id"`
	CourtID            uuid.UUID  `db:"court_id"`
	SkillLevel         SkillLevel `db:"skill_level"`
	DurationMinutes    int        `db:"duration_minutes"`
	Active             bool       `db:"active"`
	NotificationHandle *string    `db:"notification_handle"`
	CreatedAt          time.Time  `db:"created_at"`
	ExpiresAt          time.Time  `db:"expires_at"`
}

// IsActive reports whether the check-in is current at the given instant.
// The active flag alone is not enough: rows expire passively without a write.
func (c *CheckIn) IsActive(now time.Time) bool {
	return c.Active && c.ExpiresAt.After(now)
}
