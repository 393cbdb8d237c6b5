package protocol

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{name: "Play", action: Action{Type: ActionPlay}},
		{name: "Quit", action: Action{Type: ActionQuit}},
		{name: "FetchUserPlaylists", action: Action{Type: ActionFetchUserPlaylists}},
		{name: "SkipTo with position", action: Action{Type: ActionSkipTo, Position: 3}},
		{name: "SkipTo missing position", action: Action{Type: ActionSkipTo}, wantErr: true},
		{name: "SkipTo negative position", action: Action{Type: ActionSkipTo, Position: -1}, wantErr: true},
		{name: "PlayAlbum with id", action: Action{Type: ActionPlayAlbum, AlbumID: "abc"}},
		{name: "PlayAlbum missing id", action: Action{Type: ActionPlayAlbum}, wantErr: true},
		{name: "PlayTrack with id", action: Action{Type: ActionPlayTrack, TrackID: 42}},
		{name: "PlayTrack missing id", action: Action{Type: ActionPlayTrack}, wantErr: true},
		{name: "PlayPlaylist with id", action: Action{Type: ActionPlayPlaylist, PlaylistID: 7}},
		{name: "PlayPlaylist missing id", action: Action{Type: ActionPlayPlaylist}, wantErr: true},
		{name: "PlayURI with uri", action: Action{Type: ActionPlayURI, URI: "https://x"}},
		{name: "PlayURI missing uri", action: Action{Type: ActionPlayURI}, wantErr: true},
		{name: "Search with query", action: Action{Type: ActionSearch, Query: "q"}},
		{name: "Search missing query", action: Action{Type: ActionSearch}, wantErr: true},
		{name: "FetchArtistAlbums missing id", action: Action{Type: ActionFetchArtistAlbums}, wantErr: true},
		{name: "FetchPlaylistTracks missing id", action: Action{Type: ActionFetchPlaylistTracks}, wantErr: true},
		{name: "Unknown type", action: Action{Type: "teleport"}, wantErr: true},
		{name: "Empty type", action: Action{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformed), "validation failures carry ErrMalformed")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAction_IsMutation(t *testing.T) {
	mutations := []ActionType{
		ActionPlay, ActionPause, ActionPlayPause, ActionStop,
		ActionNext, ActionPrevious, ActionSkipTo,
		ActionJumpForward, ActionJumpBackward, ActionQuit,
		ActionPlayAlbum, ActionPlayTrack, ActionPlayPlaylist, ActionPlayURI,
	}
	for _, at := range mutations {
		assert.True(t, Action{Type: at}.IsMutation(), "%s should be a mutation", at)
	}

	queries := []ActionType{
		ActionSearch, ActionFetchArtistAlbums, ActionFetchPlaylistTracks, ActionFetchUserPlaylists,
	}
	for _, at := range queries {
		assert.False(t, Action{Type: at}.IsMutation(), "%s should be a query", at)
	}
}

func TestDecodeAction(t *testing.T) {
	action, err := DecodeAction([]byte(`{"type":"skipTo","position":4}`))
	require.NoError(t, err)
	assert.Equal(t, ActionSkipTo, action.Type)
	assert.Equal(t, 4, action.Position)

	_, err = DecodeAction([]byte(`{"type":"skipTo"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeAction([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}
