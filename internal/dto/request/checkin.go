package request

type CheckInRequest struct {
	CourtID         string `json:"court_id" validate:"required,uuid4"`
	SkillLevel      string `json:"skill_level" validate:"required,oneof=Beginner Intermediate Advanced"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

type CheckOutRequest struct {
	CourtID string `json:"court_id" validate:"required,uuid4"`

	// CourtName lets the client skip a redundant lookup when it already
	// knows the name it displayed.
	CourtName string `json:"court_name,omitempty"`
}
