package qobuz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		AppID:     "test_app",
		AppSecret: "test_secret",
		UserToken: "test_token",
		BaseURL:   server.URL + "/",
	})
	require.NoError(t, err)
	client.retryDelay = time.Millisecond
	return client, server
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{AppID: "app"})
	assert.Error(t, err)

	_, err = New(Config{UserToken: "token"})
	assert.Error(t, err)
}

func TestClient_Album(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/album/get", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("album_id"))
		assert.Equal(t, "test_app", r.Header.Get("X-App-Id"))
		assert.Equal(t, "test_token", r.Header.Get("X-User-Auth-Token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "abc123",
			"title": "Test Album",
			"artist": {"id": 5, "name": "Test Artist"},
			"tracks_count": 2,
			"release_date_original": "2020-01-31",
			"genre": {"name": "Jazz"},
			"hires_streamable": true,
			"tracks": {"items": [
				{"id": 100, "title": "One", "duration": 180, "track_number": 1},
				{"id": 101, "title": "Two", "duration": 240, "track_number": 2}
			]}
		}`)
	})

	album, err := client.Album(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", album.ID)
	assert.Equal(t, "Test Album", album.Title)
	assert.Equal(t, "Test Artist", album.Artist.Name)
	assert.Equal(t, 2, album.TotalTracks)
	assert.Equal(t, "Jazz", album.Genre)
	assert.True(t, album.HiRes)
	require.Len(t, album.Tracks, 2)
	assert.Equal(t, 3*time.Minute, album.Tracks[0].Duration)
	assert.Equal(t, 2, album.Tracks[1].TrackNumber)
}

func TestClient_Playlist(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlist/get", r.URL.Path)
		assert.Equal(t, "77", r.URL.Query().Get("playlist_id"))
		assert.Equal(t, "tracks", r.URL.Query().Get("extra"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": 77,
			"name": "Road Trip",
			"tracks_count": 1,
			"owner": {"name": "alice"},
			"tracks": {"items": [{"id": 200, "title": "Go", "duration": 120}]}
		}`)
	})

	playlist, err := client.Playlist(context.Background(), 77)
	require.NoError(t, err)

	assert.Equal(t, int64(77), playlist.ID)
	assert.Equal(t, "Road Trip", playlist.Name)
	assert.Equal(t, "alice", playlist.Owner)
	require.Len(t, playlist.Tracks, 1)
	assert.Equal(t, uint(200), playlist.Tracks[0].ID)
}

func TestClient_Track(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track/get", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": 42,
			"title": "Single",
			"performer": {"name": "Bob"},
			"duration": 300,
			"maximum_sampling_rate": 96,
			"maximum_bit_depth": 24,
			"album": {"id": "al9", "title": "Source", "tracks_count": 10}
		}`)
	})

	track, err := client.Track(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, uint(42), track.ID)
	assert.Equal(t, "Bob", track.Artist)
	assert.Equal(t, 5*time.Minute, track.Duration)
	assert.Equal(t, float32(96), track.SamplingRate)
	assert.Equal(t, 24, track.BitDepth)
	require.NotNil(t, track.Album)
	assert.Equal(t, "al9", track.Album.ID)
	assert.Empty(t, track.Album.Tracks, "embedded album carries no track listing")
}

func TestClient_TrackURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track/getFileUrl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("track_id"))
		assert.Equal(t, "6", q.Get("format_id"))
		assert.Equal(t, "stream", q.Get("intent"))
		assert.NotEmpty(t, q.Get("request_ts"))
		assert.Len(t, q.Get("request_sig"), 32, "signature is an md5 hex digest")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url": "https://streaming.qobuz.com/file/42.flac"}`)
	})

	url, err := client.TrackURL(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "https://streaming.qobuz.com/file/42.flac", url)
}

func TestClient_TrackURLRequiresSecret(t *testing.T) {
	client, err := New(Config{AppID: "app", UserToken: "token"})
	require.NoError(t, err)

	_, err = client.TrackURL(context.Background(), 42)
	assert.ErrorIs(t, err, protocol.ErrUnavailable)
}

func TestClient_Search(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/search", r.URL.Path)
		assert.Equal(t, "miles", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"albums": {"items": [{"id": "a1", "title": "Kind of Blue"}]},
			"tracks": {"items": [{"id": 1, "title": "So What", "duration": 545}]},
			"artists": {"items": [{"id": 9, "name": "Miles Davis"}]},
			"playlists": {"items": []}
		}`)
	})

	results, err := client.Search(context.Background(), "miles")
	require.NoError(t, err)

	assert.Equal(t, "miles", results.Query)
	assert.Len(t, results.Albums, 1)
	assert.Len(t, results.Tracks, 1)
	assert.Len(t, results.Artists, 1)
	assert.Empty(t, results.Playlists)
}

func TestClient_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Album(context.Background(), "missing")
	assert.ErrorIs(t, err, protocol.ErrNotFound)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "abc", "title": "Eventually"}`)
	})

	album, err := client.Album(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Eventually", album.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Album(context.Background(), "abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, protocol.ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Album(context.Background(), "abc")
	assert.ErrorIs(t, err, protocol.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}
