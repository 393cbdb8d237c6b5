// Package music provides the catalog domain entities.
//
// Track and Album reference each other (a queued track carries the album it
// came from, an album carries its tracks), so the entities live in a single
// package.
package music

import "time"

// TrackStatus represents the playback status of a queued track.
type TrackStatus string

const (
	StatusUnplayed TrackStatus = "unplayed" // Track has not been played yet
	StatusPlaying  TrackStatus = "playing"  // Track is currently playing
	StatusPlayed   TrackStatus = "played"   // Track has finished playing
)

// Track represents a single track from the catalog.
type Track struct {
	ID           uint          `json:"id"`                      // Catalog track ID
	Title        string        `json:"title"`                   // Track title
	Artist       string        `json:"artist,omitempty"`        // Performing artist name
	Duration     time.Duration `json:"duration"`                // Track duration
	TrackNumber  int           `json:"track_number,omitempty"`  // Number within the source album
	Position     int           `json:"position,omitempty"`      // Position within the playback queue (1-based)
	Album        *Album        `json:"album,omitempty"`         // Source album, if known
	StreamURL    string        `json:"stream_url,omitempty"`    // Resolved stream URL, if any
	Explicit     bool          `json:"explicit,omitempty"`      // Parental warning flag
	SamplingRate float32       `json:"sampling_rate,omitempty"` // Maximum sampling rate in kHz
	BitDepth     int           `json:"bit_depth,omitempty"`     // Maximum bit depth
	Status       TrackStatus   `json:"status"`                  // Playback status within the queue
}
