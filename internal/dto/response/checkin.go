package response

import (
	"time"

	"pickleradar/internal/data/entity"
)

// Result codes for check-in/check-out failures the client can act on.
const (
	CodeAlreadyCheckedIn  = "ALREADY_CHECKED_IN"
	CodeOperationInFlight = "OPERATION_IN_FLIGHT"
)

// CheckInResult is what both check-in and check-out return. On conflict,
// CourtID/CourtName identify the court the user is already checked in at
// so the client can offer "go there" or "check out first".
type CheckInResult struct {
	Success   bool   `json:"success"`
	Code      string `json:"code,omitempty"`
	CourtID   string `json:"court_id,omitempty"`
	CourtName string `json:"court_name,omitempty"`
	Error     string `json:"error,omitempty"`
}

type RemainingTime struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

type ActiveCheckInResponse struct {
	ID              string            `json:"id"`
	CourtID         string            `json:"court_id"`
	CourtName       string            `json:"court_name"`
	SkillLevel      entity.SkillLevel `json:"skill_level"`
	DurationMinutes int               `json:"duration_minutes"`
	CheckedInAt     time.Time         `json:"checked_in_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
	Remaining       RemainingTime     `json:"remaining"`
}

type CheckInHistoryEntry struct {
	ID          string            `json:"id"`
	CourtID     string            `json:"court_id"`
	CourtName   string            `json:"court_name"`
	SkillLevel  entity.SkillLevel `json:"skill_level"`
	CheckedInAt time.Time         `json:"checked_in_at"`
}
