package response

import (
	"time"

	"pickleradar/internal/data/entity"
)

type CourtResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	CourtCount    int     `json:"court_count"`
	Indoor        bool    `json:"indoor"`
	Lighted       bool    `json:"lighted"`
	ActivePlayers int64   `json:"active_players"`
}

type ActivePlayerResponse struct {
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"display_name"`
	SkillLevel  entity.SkillLevel `json:"skill_level"`
	CheckedInAt time.Time         `json:"checked_in_at"`
	Remaining   RemainingTime     `json:"remaining"`
}

type CourtDetailResponse struct {
	CourtResponse
	Players []ActivePlayerResponse `json:"players"`
}

func CourtToResponse(court *entity.Court, activePlayers int64) CourtResponse {
	return CourtResponse{
		ID:            court.ID.String(),
		Name:          court.Name,
		Address:       court.Address,
		City:          court.City,
		Latitude:      court.Latitude,
		Longitude:     court.Longitude,
		CourtCount:    court.CourtCount,
		Indoor:        court.Indoor,
		Lighted:       court.Lighted,
		ActivePlayers: activePlayers,
	}
}
