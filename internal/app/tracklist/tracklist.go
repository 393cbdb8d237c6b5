// Package tracklist provides the ordered playback queue.
package tracklist

import (
	"encoding/json"
	"sort"

	"github.com/hifigo/hifigo/internal/domain/music"
)

// ListType describes what the queue was populated from.
type ListType string

const (
	ListTypeAlbum    ListType = "album"
	ListTypePlaylist ListType = "playlist"
	ListTypeTrack    ListType = "track"
	ListTypeUnknown  ListType = "unknown"
)

// ParseListType converts a string into a ListType.
func ParseListType(s string) ListType {
	switch s {
	case "album":
		return ListTypeAlbum
	case "playlist":
		return ListTypePlaylist
	case "track":
		return ListTypeTrack
	default:
		return ListTypeUnknown
	}
}

// TrackList is an ordered collection of tracks keyed by queue position.
// Positions are 1-based and insertion order is playback order. Iteration and
// serialization are always in increasing position order because remote UIs
// consume the serialized queue positionally.
//
// A TrackList is not safe for concurrent use; it is owned and mutated only by
// the player state machine, which hands out copies to readers.
type TrackList struct {
	queue    map[int]*music.Track
	album    *music.Album
	playlist *music.Playlist
	listType ListType
}

// New creates a TrackList from an existing position mapping. A nil queue
// yields an empty list. The list type starts as unknown with no parent set.
func New(queue map[int]*music.Track) *TrackList {
	q := make(map[int]*music.Track, len(queue))
	for pos, t := range queue {
		q[pos] = t
	}
	return &TrackList{
		queue:    q,
		listType: ListTypeUnknown,
	}
}

// Total returns the richer source count when a parent is set: the album's
// declared track count, then the playlist's declared count, then the live
// queue size. The declared count may legitimately exceed the queue size while
// a queue is partially populated.
func (tl *TrackList) Total() uint {
	if tl.album != nil {
		return uint(tl.album.TotalTracks)
	}
	if tl.playlist != nil {
		return uint(tl.playlist.TracksCount)
	}
	return uint(len(tl.queue))
}

// Len returns the live queue size.
func (tl *TrackList) Len() int {
	return len(tl.queue)
}

// Clear resets the list to empty with no parent and unknown type. Idempotent.
func (tl *TrackList) Clear() {
	tl.queue = make(map[int]*music.Track)
	tl.album = nil
	tl.playlist = nil
	tl.listType = ListTypeUnknown
}

// Append adds a track at the next free position and returns that position.
func (tl *TrackList) Append(t *music.Track) int {
	pos := 0
	for p := range tl.queue {
		if p > pos {
			pos = p
		}
	}
	pos++
	t.Position = pos
	if t.Status == "" {
		t.Status = music.StatusUnplayed
	}
	tl.queue[pos] = t
	return pos
}

// SetAlbum sets the parent album and marks the list as an album queue.
// Any previously set playlist is cleared; the two parents are mutually
// exclusive.
func (tl *TrackList) SetAlbum(a *music.Album) {
	tl.album = a
	tl.playlist = nil
	tl.listType = ListTypeAlbum
}

// SetPlaylist sets the parent playlist and marks the list as a playlist
// queue. Any previously set album is cleared.
func (tl *TrackList) SetPlaylist(p *music.Playlist) {
	tl.playlist = p
	tl.album = nil
	tl.listType = ListTypePlaylist
}

// SetListType overrides the list type without touching the parents.
func (tl *TrackList) SetListType(lt ListType) {
	tl.listType = lt
}

// ListType returns the list type.
func (tl *TrackList) ListType() ListType {
	return tl.listType
}

// Album returns the album of the currently playing track when that track
// carries its own embedded album, falling back to the list-level album. A
// queue can mix tracks from different source albums, so the UI must see the
// album actually sounding rather than the queue's nominal parent.
func (tl *TrackList) Album() *music.Album {
	if cur := tl.CurrentTrack(); cur != nil && cur.Album != nil {
		return cur.Album
	}
	return tl.album
}

// Playlist returns the parent playlist, if set.
func (tl *TrackList) Playlist() *music.Playlist {
	return tl.playlist
}

// FindTrackByPosition returns the track at the given queue position, or nil.
func (tl *TrackList) FindTrackByPosition(pos int) *music.Track {
	return tl.queue[pos]
}

// SetTrackStatus sets the status of the track at the given position. Missing
// positions are a no-op, not an error.
func (tl *TrackList) SetTrackStatus(pos int, status music.TrackStatus) {
	if t, ok := tl.queue[pos]; ok {
		t.Status = status
	}
}

// AllTracks returns every track in increasing position order.
func (tl *TrackList) AllTracks() []*music.Track {
	tracks := make([]*music.Track, 0, len(tl.queue))
	for _, pos := range tl.positions() {
		tracks = append(tracks, tl.queue[pos])
	}
	return tracks
}

// UnplayedTracks returns the tracks with unplayed status, in position order.
func (tl *TrackList) UnplayedTracks() []*music.Track {
	return tl.filter(music.StatusUnplayed)
}

// PlayedTracks returns the tracks with played status, in position order.
func (tl *TrackList) PlayedTracks() []*music.Track {
	return tl.filter(music.StatusPlayed)
}

// TrackIndex returns the position of the first track whose ID matches.
// Linear scan; queues are UI-scale.
func (tl *TrackList) TrackIndex(trackID uint) (int, bool) {
	for _, pos := range tl.positions() {
		if tl.queue[pos].ID == trackID {
			return pos, true
		}
	}
	return 0, false
}

// CurrentTrack returns the unique track with playing status, or nil.
func (tl *TrackList) CurrentTrack() *music.Track {
	for _, pos := range tl.positions() {
		if tl.queue[pos].Status == music.StatusPlaying {
			return tl.queue[pos]
		}
	}
	return nil
}

// CurrentPosition returns the queue position of the playing track.
func (tl *TrackList) CurrentPosition() (int, bool) {
	for _, pos := range tl.positions() {
		if tl.queue[pos].Status == music.StatusPlaying {
			return pos, true
		}
	}
	return 0, false
}

// Copy returns a deep copy of the list, safe to hand to readers.
func (tl *TrackList) Copy() *TrackList {
	cp := &TrackList{
		queue:    make(map[int]*music.Track, len(tl.queue)),
		listType: tl.listType,
	}
	for pos, t := range tl.queue {
		tc := *t
		cp.queue[pos] = &tc
	}
	if tl.album != nil {
		a := *tl.album
		cp.album = &a
	}
	if tl.playlist != nil {
		p := *tl.playlist
		cp.playlist = &p
	}
	return cp
}

func (tl *TrackList) filter(status music.TrackStatus) []*music.Track {
	tracks := make([]*music.Track, 0, len(tl.queue))
	for _, pos := range tl.positions() {
		if tl.queue[pos].Status == status {
			tracks = append(tracks, tl.queue[pos])
		}
	}
	return tracks
}

func (tl *TrackList) positions() []int {
	positions := make([]int, 0, len(tl.queue))
	for pos := range tl.queue {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// wireList is the JSON form of a TrackList. The queue is flattened into a
// position-ordered array; positions are carried on the tracks themselves.
type wireList struct {
	Queue    []music.Track   `json:"queue"`
	Album    *music.Album    `json:"album,omitempty"`
	Playlist *music.Playlist `json:"playlist,omitempty"`
	ListType ListType        `json:"list_type"`
}

// MarshalJSON implements json.Marshaler.
func (tl *TrackList) MarshalJSON() ([]byte, error) {
	w := wireList{
		Queue:    make([]music.Track, 0, len(tl.queue)),
		Album:    tl.album,
		Playlist: tl.playlist,
		ListType: tl.listType,
	}
	for _, pos := range tl.positions() {
		w.Queue = append(w.Queue, *tl.queue[pos])
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (tl *TrackList) UnmarshalJSON(data []byte) error {
	var w wireList
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	tl.queue = make(map[int]*music.Track, len(w.Queue))
	for i := range w.Queue {
		t := w.Queue[i]
		tl.queue[t.Position] = &t
	}
	tl.album = w.Album
	tl.playlist = w.Playlist
	tl.listType = w.ListType
	if tl.listType == "" {
		tl.listType = ListTypeUnknown
	}
	return nil
}
