package music

import "time"

// Playlist represents a user playlist from the catalog.
type Playlist struct {
	ID          int64   `json:"id"`                    // Catalog playlist ID
	Name        string  `json:"name"`                  // Playlist name
	Description string  `json:"description,omitempty"` // Playlist description
	Owner       string  `json:"owner,omitempty"`       // Owner display name
	TracksCount int     `json:"tracks_count"`          // Declared track count (may exceed loaded tracks)
	Tracks      []Track `json:"tracks,omitempty"`      // Playlist tracks, when fetched in full
}

// Duration returns the total duration of the loaded tracks.
func (p *Playlist) Duration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// TrackIDs returns the IDs of the loaded tracks.
func (p *Playlist) TrackIDs() []uint {
	ids := make([]uint, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}
