package domain

import "time"

// Categories offered by the studio. Categories are stored as text so new ones
// can appear without a schema change.
const (
	CategoryRowing    = "Rowing"
	CategoryCycling   = "Cycling"
	CategoryStrength  = "Strength"
	CategoryEndurance = "Endurance"
)

// Class is an offered fitness session with fixed capacity and price.
type Class struct {
	ID             string
	Code           string
	Category       string
	Name           string
	Instructor     string
	Time           string
	Price          int
	SlotsAvailable int
	CreatedAt      time.Time
}
