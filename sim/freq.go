package sim

import (
	"log"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time in seconds between two consecutive cycles.
func (f Freq) Period() float64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return 1.0 / float64(f)
}

// Seconds converts a number of cycles at this frequency into seconds.
func (f Freq) Seconds(cycles VTime) float64 {
	return float64(cycles) * f.Period()
}

// Cycles converts a duration in seconds into the number of whole cycles
// that fit in it.
func (f Freq) Cycles(seconds float64) VTime {
	if seconds < 0 {
		log.Panic("duration cannot be negative")
	}

	return VTime(seconds * float64(f))
}
