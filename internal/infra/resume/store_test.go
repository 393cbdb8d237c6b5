package resume

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/app/tracklist"
	"github.com/hifigo/hifigo/internal/domain/music"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state", "resume.json"))
	require.NoError(t, err)

	list := tracklist.New(nil)
	list.Append(&music.Track{ID: 1, Title: "A", Duration: 3 * time.Minute})
	list.Append(&music.Track{ID: 2, Title: "B", Duration: 4 * time.Minute})
	list.SetTrackStatus(2, music.StatusPlaying)

	saved := protocol.ResumeState{
		TrackList: list,
		Position:  75 * time.Second,
		SavedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, saved.Position, loaded.Position)
	assert.Equal(t, 2, loaded.TrackList.Len())
	cur := loaded.TrackList.CurrentTrack()
	require.NotNil(t, cur)
	assert.Equal(t, uint(2), cur.ID)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "resume.json"))
	require.NoError(t, err)

	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "resume.json"))
	require.NoError(t, err)

	list := tracklist.New(nil)
	list.Append(&music.Track{ID: 1, Title: "A"})
	require.NoError(t, store.Save(protocol.ResumeState{TrackList: list, Position: time.Second}))

	list2 := tracklist.New(nil)
	list2.Append(&music.Track{ID: 9, Title: "Z"})
	require.NoError(t, store.Save(protocol.ResumeState{TrackList: list2, Position: 2 * time.Second}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, loaded.Position)
	assert.Equal(t, uint(9), loaded.TrackList.AllTracks()[0].ID)
}
