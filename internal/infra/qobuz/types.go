package qobuz

import (
	"time"

	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/domain/music"
)

// Wire types mirroring the Qobuz API JSON shapes, converted into the domain
// entities at the boundary.

type artistResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type albumResponse struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Artist              artistResponse `json:"artist"`
	TracksCount         int            `json:"tracks_count"`
	ReleaseDateOriginal string         `json:"release_date_original"`
	ParentalWarning     bool           `json:"parental_warning"`
	HiresStreamable     bool           `json:"hires_streamable"`
	Genre               struct {
		Name string `json:"name"`
	} `json:"genre"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Tracks *struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
}

type trackResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Performer struct {
		Name string `json:"name"`
	} `json:"performer"`
	Duration            int64          `json:"duration"` // Seconds
	TrackNumber         int            `json:"track_number"`
	ParentalWarning     bool           `json:"parental_warning"`
	MaximumSamplingRate float32        `json:"maximum_sampling_rate"`
	MaximumBitDepth     int            `json:"maximum_bit_depth"`
	Album               *albumResponse `json:"album"`
}

type playlistResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TracksCount int    `json:"tracks_count"`
	Owner       struct {
		Name string `json:"name"`
	} `json:"owner"`
	Tracks *struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
}

type searchResponse struct {
	Albums struct {
		Items []albumResponse `json:"items"`
	} `json:"albums"`
	Tracks struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
	Artists struct {
		Items []artistResponse `json:"items"`
	} `json:"artists"`
	Playlists struct {
		Items []playlistResponse `json:"items"`
	} `json:"playlists"`
}

func (r albumResponse) toAlbum() music.Album {
	album := music.Album{
		ID:          r.ID,
		Title:       r.Title,
		Artist:      music.Artist{ID: r.Artist.ID, Name: r.Artist.Name},
		TotalTracks: r.TracksCount,
		ReleaseDate: r.ReleaseDateOriginal,
		Genre:       r.Genre.Name,
		CoverURL:    r.Image.Large,
		Explicit:    r.ParentalWarning,
		HiRes:       r.HiresStreamable,
	}
	if r.Tracks != nil {
		album.Tracks = make([]music.Track, 0, len(r.Tracks.Items))
		for _, item := range r.Tracks.Items {
			album.Tracks = append(album.Tracks, item.toTrack())
		}
	}
	return album
}

func (r trackResponse) toTrack() music.Track {
	track := music.Track{
		ID:           r.ID,
		Title:        r.Title,
		Artist:       r.Performer.Name,
		Duration:     time.Duration(r.Duration) * time.Second,
		TrackNumber:  r.TrackNumber,
		Explicit:     r.ParentalWarning,
		SamplingRate: r.MaximumSamplingRate,
		BitDepth:     r.MaximumBitDepth,
		Status:       music.StatusUnplayed,
	}
	if r.Album != nil {
		album := r.Album.toAlbum()
		track.Album = album.Ref()
	}
	return track
}

func (r playlistResponse) toPlaylist() music.Playlist {
	playlist := music.Playlist{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Owner:       r.Owner.Name,
		TracksCount: r.TracksCount,
	}
	if r.Tracks != nil {
		playlist.Tracks = make([]music.Track, 0, len(r.Tracks.Items))
		for _, item := range r.Tracks.Items {
			playlist.Tracks = append(playlist.Tracks, item.toTrack())
		}
	}
	return playlist
}

func (r searchResponse) toSearchResults() protocol.SearchResults {
	results := protocol.SearchResults{}
	for _, item := range r.Albums.Items {
		results.Albums = append(results.Albums, item.toAlbum())
	}
	for _, item := range r.Tracks.Items {
		results.Tracks = append(results.Tracks, item.toTrack())
	}
	for _, item := range r.Artists.Items {
		results.Artists = append(results.Artists, music.Artist{ID: item.ID, Name: item.Name})
	}
	for _, item := range r.Playlists.Items {
		results.Playlists = append(results.Playlists, item.toPlaylist())
	}
	return results
}
