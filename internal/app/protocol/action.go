// Package protocol defines the wire-level command and notification types
// exchanged between the player core and its observers. Actions and
// notifications carry only value identifiers, never references, so they can
// cross a process boundary unchanged.
package protocol

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ActionType discriminates the closed set of player commands.
type ActionType string

const (
	// Transport control.
	ActionPlay         ActionType = "play"
	ActionPause        ActionType = "pause"
	ActionPlayPause    ActionType = "playPause"
	ActionStop         ActionType = "stop"
	ActionNext         ActionType = "next"
	ActionPrevious     ActionType = "previous"
	ActionSkipTo       ActionType = "skipTo"
	ActionJumpForward  ActionType = "jumpForward"
	ActionJumpBackward ActionType = "jumpBackward"
	ActionQuit         ActionType = "quit"

	// Queue loads.
	ActionPlayAlbum    ActionType = "playAlbum"
	ActionPlayTrack    ActionType = "playTrack"
	ActionPlayPlaylist ActionType = "playPlaylist"
	ActionPlayURI      ActionType = "playUri"

	// Queries. Results are returned to the issuing caller only, never
	// broadcast.
	ActionSearch              ActionType = "search"
	ActionFetchArtistAlbums   ActionType = "fetchArtistAlbums"
	ActionFetchPlaylistTracks ActionType = "fetchPlaylistTracks"
	ActionFetchUserPlaylists  ActionType = "fetchUserPlaylists"
)

// Action is a user- or remote-originated command. The zero value of every
// payload field is meaningful only for the action types that declare it.
type Action struct {
	Type ActionType `json:"type"`

	Position   int    `json:"position,omitempty"`    // skipTo target (1-based)
	AlbumID    string `json:"album_id,omitempty"`    // playAlbum
	TrackID    uint   `json:"track_id,omitempty"`    // playTrack
	PlaylistID int64  `json:"playlist_id,omitempty"` // playPlaylist, fetchPlaylistTracks
	URI        string `json:"uri,omitempty"`         // playUri
	Query      string `json:"query,omitempty"`       // search
	ArtistID   int    `json:"artist_id,omitempty"`   // fetchArtistAlbums
}

// Validate checks that the action type is known and its required payload
// fields are present. Violations are marked with ErrMalformed.
func (a Action) Validate() error {
	switch a.Type {
	case ActionPlay, ActionPause, ActionPlayPause, ActionStop,
		ActionNext, ActionPrevious, ActionJumpForward, ActionJumpBackward,
		ActionQuit, ActionFetchUserPlaylists:
		return nil
	case ActionSkipTo:
		if a.Position <= 0 {
			return errors.Mark(errors.New("skipTo requires a positive position"), ErrMalformed)
		}
	case ActionPlayAlbum:
		if a.AlbumID == "" {
			return errors.Mark(errors.New("playAlbum requires album_id"), ErrMalformed)
		}
	case ActionPlayTrack:
		if a.TrackID == 0 {
			return errors.Mark(errors.New("playTrack requires track_id"), ErrMalformed)
		}
	case ActionPlayPlaylist:
		if a.PlaylistID == 0 {
			return errors.Mark(errors.New("playPlaylist requires playlist_id"), ErrMalformed)
		}
	case ActionPlayURI:
		if a.URI == "" {
			return errors.Mark(errors.New("playUri requires uri"), ErrMalformed)
		}
	case ActionSearch:
		if a.Query == "" {
			return errors.Mark(errors.New("search requires query"), ErrMalformed)
		}
	case ActionFetchArtistAlbums:
		if a.ArtistID == 0 {
			return errors.Mark(errors.New("fetchArtistAlbums requires artist_id"), ErrMalformed)
		}
	case ActionFetchPlaylistTracks:
		if a.PlaylistID == 0 {
			return errors.Mark(errors.New("fetchPlaylistTracks requires playlist_id"), ErrMalformed)
		}
	default:
		return errors.Mark(errors.Newf("unknown action type %q", a.Type), ErrMalformed)
	}
	return nil
}

// IsMutation reports whether the action mutates playback state. Queries are
// read-only and bypass transport-level write authorization.
func (a Action) IsMutation() bool {
	switch a.Type {
	case ActionSearch, ActionFetchArtistAlbums, ActionFetchPlaylistTracks, ActionFetchUserPlaylists:
		return false
	}
	return true
}

// DecodeAction parses and validates a JSON action payload. Malformed input
// never reaches the state machine.
func DecodeAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, errors.Mark(errors.Wrap(err, "decode action"), ErrMalformed)
	}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}
