package music

import "time"

// Album represents a catalog album (a release).
type Album struct {
	ID          string  `json:"id"`                     // Catalog album ID
	Title       string  `json:"title"`                  // Album title
	Artist      Artist  `json:"artist"`                 // Main artist
	TotalTracks int     `json:"total_tracks"`           // Declared track count (may exceed loaded tracks)
	ReleaseDate string  `json:"release_date,omitempty"` // Original release date (YYYY-MM-DD)
	Genre       string  `json:"genre,omitempty"`        // Genre name
	CoverURL    string  `json:"cover_url,omitempty"`    // Cover art URL
	Explicit    bool    `json:"explicit,omitempty"`     // Parental warning flag
	HiRes       bool    `json:"hires,omitempty"`        // Hi-res streamable flag
	Tracks      []Track `json:"tracks,omitempty"`       // Album tracks, when fetched in full
}

// Duration returns the total duration of the loaded tracks.
func (a *Album) Duration() time.Duration {
	var total time.Duration
	for _, t := range a.Tracks {
		total += t.Duration
	}
	return total
}

// TrackIDs returns the IDs of the loaded tracks.
func (a *Album) TrackIDs() []uint {
	ids := make([]uint, len(a.Tracks))
	for i, t := range a.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Ref returns a copy of the album without its track listing, suitable for
// embedding into a queued track.
func (a *Album) Ref() *Album {
	ref := *a
	ref.Tracks = nil
	return &ref
}
