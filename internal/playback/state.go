package playback

import (
	"time"

	"github.com/desertthunder/sonic57/internal/models"
)

// State is the transport's position in its state machine.
type State int

const (
	Idle State = iota
	LoadedPaused
	LoadedPlaying
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case LoadedPaused:
		return "Paused"
	case LoadedPlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Snapshot is a copy of the playback session at one instant.
type Snapshot struct {
	Track    *models.Track
	Playing  bool
	Loading  bool
	Position time.Duration
	Duration time.Duration
	Volume   float64
	State    State
}

// Progress returns Position/Duration in [0,1], or 0 while the duration is unknown.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	return min(max(p, 0), 1)
}
