package protocol

import "time"

// State represents the playback state of the player.
type State string

const (
	StateStopped State = "stopped"
	StatePaused  State = "paused"
	StatePlaying State = "playing"
	StateQuit    State = "quit" // Terminal
)

// Clock is a snapshot of the playback clock within the current track.
type Clock struct {
	Position time.Duration `json:"position"` // Elapsed time within the track
	Duration time.Duration `json:"duration"` // Total track duration
}
