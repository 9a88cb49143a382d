package entity

import (
	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship is a directed request; an accepted row makes both users
// friends regardless of direction.
type Friendship struct {
	Base
	RequesterID uuid.UUID        `db:"requester_id"`
	AddresseeID uuid.UUID        `db:"addressee_id"`
	Status      FriendshipStatus `db:"status"`
}
