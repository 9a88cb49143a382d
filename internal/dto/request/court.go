package request

type CreateCourtRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	Address    string  `json:"address" validate:"required"`
	City       string  `json:"city" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64 `json:"longitude" validate:"min=-180,max=180"`
	CourtCount int     `json:"court_count" validate:"required,gt=0"`
	Indoor     bool    `json:"indoor"`
	Lighted    bool    `json:"lighted"`
}

type UpdateCourtRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	Address    string  `json:"address" validate:"required"`
	City       string  `json:"city" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64 `json:"longitude" validate:"min=-180,max=180"`
	CourtCount int     `json:"court_count" validate:"required,gt=0"`
	Indoor     bool    `json:"indoor"`
	Lighted    bool    `json:"lighted"`
}
