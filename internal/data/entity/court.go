package entity

type Court struct {
	Base
	Name       string  `db:"name"`
	Address    string  `db:"address"`
	City       string  `db:"city"`
	Latitude   float64 `db:"latitude"`
	Longitude  float64 `db:"longitude"`
	CourtCount int     `db:"court_count"`
	Indoor     bool    `db:"indoor"`
	Lighted    bool    `db:"lighted"`
}
