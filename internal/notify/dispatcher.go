// Package notify is the notification side of the check-in flow: reminder
// scheduling, direct push messages, and the friend fan-out events consumed
// by the background worker. Every capability is best-effort; callers treat
// all errors here as non-fatal.
package notify

import (
	"context"
	"time"
)

const (
	QueueCheckInCreated = "checkin.created"
	QueueCheckInRemoved = "checkin.removed"
	QueuePush           = "notification.push"
)

// CheckInCreatedEvent is published when a user checks in. It carries enough
// for the worker to build friend notifications without querying back.
type CheckInCreatedEvent struct {
	UserID          string    `json:"user_id"`
	DisplayName     string    `json:"display_name"`
	CourtID         string    `json:"court_id"`
	CourtName       string    `json:"court_name"`
	SkillLevel      string    `json:"skill_level"`
	DurationMinutes int       `json:"duration_minutes"`
	ExpiresAt       time.Time `json:"expires_at"`
	CheckedInAt     time.Time `json:"checked_in_at"`
}

// CheckInRemovedEvent is published when a user checks out.
type CheckInRemovedEvent struct {
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	CourtID      string    `json:"court_id"`
	CourtName    string    `json:"court_name"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// PushMessage is a single notification addressed to one user.
type PushMessage struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Dispatcher is the notification capability consumed by the check-in
// service. Implementations must never block longer than the caller's
// context allows.
type Dispatcher interface {
	// ScheduleReminder schedules a one-shot reminder to the user at fireAt
	// and returns an opaque handle usable only with CancelReminder.
	ScheduleReminder(ctx context.Context, userID, message string, fireAt time.Time) (string, error)
	CancelReminder(ctx context.Context, handle string) error

	SendImmediate(ctx context.Context, msg PushMessage) error

	NotifyFriendsOfCheckIn(ctx context.Context, event CheckInCreatedEvent) error
	NotifyFriendsOfCheckOut(ctx context.Context, event CheckInRemovedEvent) error
}
