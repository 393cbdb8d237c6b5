package playback

import (
	"context"
	"time"

	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/domain/music"
)

// Catalog resolves catalog IDs into metadata. Implementations mark failures
// with protocol.ErrNotFound or protocol.ErrUnavailable; the player surfaces
// them to the caller without retrying.
type Catalog interface {
	Album(ctx context.Context, id string) (*music.Album, error)
	Playlist(ctx context.Context, id int64) (*music.Playlist, error)
	Track(ctx context.Context, id uint) (*music.Track, error)
	TrackURL(ctx context.Context, id uint) (string, error)
	Search(ctx context.Context, query string) (*protocol.SearchResults, error)
	ArtistAlbums(ctx context.Context, artistID int) ([]music.Album, error)
	UserPlaylists(ctx context.Context) ([]music.Playlist, error)
}

// Backend is the audio output boundary. The player only sequences calls;
// decoding and device control live behind this interface.
type Backend interface {
	Load(uri string) error
	Play() error
	Pause() error
	Stop() error
	Seek(position time.Duration) error
}

// ResumeStore persists the queue snapshot at start/stop boundaries.
type ResumeStore interface {
	Save(state protocol.ResumeState) error
	Load() (*protocol.ResumeState, error)
}
