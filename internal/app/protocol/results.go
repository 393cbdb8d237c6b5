package protocol

import (
	"time"

	"github.com/hifigo/hifigo/internal/app/tracklist"
	"github.com/hifigo/hifigo/internal/domain/music"
)

// SearchResults holds catalog search results across entity kinds.
type SearchResults struct {
	Query     string           `json:"query"`
	Albums    []music.Album    `json:"albums,omitempty"`
	Artists   []music.Artist   `json:"artists,omitempty"`
	Tracks    []music.Track    `json:"tracks,omitempty"`
	Playlists []music.Playlist `json:"playlists,omitempty"`
}

// ArtistAlbums echoes a fetchArtistAlbums query.
type ArtistAlbums struct {
	ArtistID int           `json:"artist_id"`
	Albums   []music.Album `json:"albums"`
}

// PlaylistTracks echoes a fetchPlaylistTracks query.
type PlaylistTracks struct {
	PlaylistID int64         `json:"playlist_id"`
	Tracks     []music.Track `json:"tracks"`
}

// QueryResults carries the payload of a query action back to the issuing
// caller. At most one field is set, matching the action type.
type QueryResults struct {
	SearchResults  *SearchResults   `json:"search_results,omitempty"`
	ArtistAlbums   *ArtistAlbums    `json:"artist_albums,omitempty"`
	PlaylistTracks *PlaylistTracks  `json:"playlist_tracks,omitempty"`
	UserPlaylists  []music.Playlist `json:"user_playlists,omitempty"`
}

// ResumeState is the persisted start/stop boundary snapshot.
type ResumeState struct {
	TrackList *tracklist.TrackList `json:"tracklist"`
	Position  time.Duration        `json:"position"`
	SavedAt   time.Time            `json:"saved_at"`
}
