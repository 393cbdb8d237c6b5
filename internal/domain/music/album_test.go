package music

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbum_Duration(t *testing.T) {
	album := Album{
		Tracks: []Track{
			{ID: 1, Duration: 3 * time.Minute},
			{ID: 2, Duration: 90 * time.Second},
		},
	}
	assert.Equal(t, 4*time.Minute+30*time.Second, album.Duration())

	empty := Album{}
	assert.Equal(t, time.Duration(0), empty.Duration())
}

func TestAlbum_TrackIDs(t *testing.T) {
	album := Album{
		Tracks: []Track{{ID: 10}, {ID: 20}, {ID: 30}},
	}
	assert.Equal(t, []uint{10, 20, 30}, album.TrackIDs())
}

func TestAlbum_Ref(t *testing.T) {
	album := Album{
		ID:          "al1",
		Title:       "Full",
		TotalTracks: 2,
		Tracks:      []Track{{ID: 1}, {ID: 2}},
	}

	ref := album.Ref()
	require.NotNil(t, ref)
	assert.Equal(t, "al1", ref.ID)
	assert.Equal(t, 2, ref.TotalTracks)
	assert.Nil(t, ref.Tracks)

	// The original keeps its listing.
	assert.Len(t, album.Tracks, 2)
}
