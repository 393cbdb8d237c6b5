// Package playback provides the player state machine that owns the tracklist
// and applies actions serially.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hifigo/hifigo/internal/app/notification"
	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/app/tracklist"
	"github.com/hifigo/hifigo/internal/domain/music"
)

// Errors
var (
	ErrNoTrack    = errors.New("no track playing")
	ErrQueueEmpty = errors.New("queue is empty")
	ErrNotPlaying = errors.New("not playing")
	ErrQuit       = errors.New("player has quit")
)

// Config holds player configuration.
type Config struct {
	JumpInterval time.Duration // Relative seek increment for jump actions
	PositionTick time.Duration // Interval between position notifications
	FetchTimeout time.Duration // Per-call timeout for catalog lookups
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		JumpInterval: 10 * time.Second,
		PositionTick: time.Second,
		FetchTimeout: 15 * time.Second,
	}
}

type request struct {
	action protocol.Action
	reply  chan response
}

type response struct {
	results *protocol.QueryResults
	err     error
}

// Player owns the current tracklist, playback state and position clock.
// Actions arriving from any number of concurrent sources are funneled through
// a single ordered channel into one goroutine (Run), giving a total order of
// mutations. Observers read copied snapshots, never shared references.
type Player struct {
	mu sync.RWMutex

	list     *tracklist.TrackList
	state    protocol.State
	position time.Duration

	catalog Catalog
	audio   Backend
	resume  ResumeStore
	hub     *notification.Hub

	config  Config
	actions chan request
	done    chan struct{}
}

// NewPlayer creates a player. The hub is required; catalog, audio backend and
// resume store are optional collaborators.
func NewPlayer(config Config, hub *notification.Hub, catalog Catalog, audio Backend, resume ResumeStore) *Player {
	if config.JumpInterval <= 0 {
		config.JumpInterval = DefaultConfig().JumpInterval
	}
	if config.PositionTick <= 0 {
		config.PositionTick = DefaultConfig().PositionTick
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Player{
		list:    tracklist.New(nil),
		state:   protocol.StateStopped,
		catalog: catalog,
		audio:   audio,
		resume:  resume,
		hub:     hub,
		config:  config,
		actions: make(chan request, 16),
		done:    make(chan struct{}),
	}
}

// Done is closed when the player goroutine has terminated.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Run applies actions until a quit action arrives or the context is
// cancelled. It is the sole owner of the player's mutable state.
func (p *Player) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.config.PositionTick)
	defer ticker.Stop()

	for {
		select {
		case req := <-p.actions:
			resp := p.apply(ctx, req.action)
			req.reply <- resp
			if req.action.Type == protocol.ActionQuit && resp.err == nil {
				return
			}
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			p.shutdown()
			return
		}
	}
}

// Dispatch submits an action to the state machine and waits for its result.
// Query actions return their results; mutations return nil results. Actions
// rejected at the protocol boundary never reach the state machine.
func (p *Player) Dispatch(ctx context.Context, action protocol.Action) (*protocol.QueryResults, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	req := request{action: action, reply: make(chan response, 1)}
	select {
	case p.actions <- req:
	case <-p.done:
		return nil, ErrQuit
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.results, resp.err
	case <-p.done:
		return nil, ErrQuit
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CurrentTrackList returns a copy of the current queue.
func (p *Player) CurrentTrackList() *tracklist.TrackList {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.list.Copy()
}

// CurrentState returns the playback state.
func (p *Player) CurrentState() protocol.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// CurrentClock returns the playback clock snapshot.
func (p *Player) CurrentClock() protocol.Clock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clockLocked()
}

// Restore loads a previously saved queue into the player. The queue comes
// back paused at the saved position; playback resumes on the next play
// action. Must be called before Run.
func (p *Player) Restore(state *protocol.ResumeState) {
	if state == nil || state.TrackList == nil || state.TrackList.Len() == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.list = state.TrackList.Copy()
	p.position = state.Position
	if _, ok := p.list.CurrentPosition(); ok {
		p.state = protocol.StatePaused
	} else {
		p.state = protocol.StateStopped
	}
}

func (p *Player) apply(ctx context.Context, a protocol.Action) response {
	switch a.Type {
	case protocol.ActionPlay:
		return response{err: p.play()}
	case protocol.ActionPause:
		return response{err: p.pause()}
	case protocol.ActionPlayPause:
		return response{err: p.playPause()}
	case protocol.ActionStop:
		return response{err: p.stop()}
	case protocol.ActionNext:
		return response{err: p.next()}
	case protocol.ActionPrevious:
		return response{err: p.previous()}
	case protocol.ActionSkipTo:
		return response{err: p.skipTo(a.Position)}
	case protocol.ActionJumpForward:
		return response{err: p.jump(p.config.JumpInterval)}
	case protocol.ActionJumpBackward:
		return response{err: p.jump(-p.config.JumpInterval)}
	case protocol.ActionPlayAlbum:
		return response{err: p.playAlbum(ctx, a.AlbumID)}
	case protocol.ActionPlayTrack:
		return response{err: p.playTrack(ctx, a.TrackID)}
	case protocol.ActionPlayPlaylist:
		return response{err: p.playPlaylist(ctx, a.PlaylistID)}
	case protocol.ActionPlayURI:
		return response{err: p.playURI(a.URI)}
	case protocol.ActionSearch:
		return p.search(ctx, a.Query)
	case protocol.ActionFetchArtistAlbums:
		return p.fetchArtistAlbums(ctx, a.ArtistID)
	case protocol.ActionFetchPlaylistTracks:
		return p.fetchPlaylistTracks(ctx, a.PlaylistID)
	case protocol.ActionFetchUserPlaylists:
		return p.fetchUserPlaylists(ctx)
	case protocol.ActionQuit:
		return response{err: p.quit()}
	default:
		return response{err: errors.Mark(errors.Newf("unknown action type %q", a.Type), protocol.ErrMalformed)}
	}
}

func (p *Player) play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == protocol.StatePlaying {
		return nil
	}
	if p.list.Len() == 0 {
		return ErrQueueEmpty
	}

	pos, ok := p.list.CurrentPosition()
	if !ok {
		// Nothing marked playing yet: start at the first unplayed track,
		// or the head of the queue when everything has been played.
		if unplayed := p.list.UnplayedTracks(); len(unplayed) > 0 {
			pos = unplayed[0].Position
		} else {
			pos = p.list.AllTracks()[0].Position
		}
		p.list.SetTrackStatus(pos, music.StatusPlaying)
	}

	if p.audio != nil {
		if err := p.audio.Play(); err != nil {
			zlog.Warn().Err(err).Msg("audio backend play failed")
		}
	}

	p.state = protocol.StatePlaying
	p.publishLocked(protocol.NewStatusNotification(p.state))
	p.publishLocked(protocol.NewPositionNotification(p.clockLocked()))
	return nil
}

func (p *Player) pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != protocol.StatePlaying {
		return ErrNotPlaying
	}

	if p.audio != nil {
		if err := p.audio.Pause(); err != nil {
			zlog.Warn().Err(err).Msg("audio backend pause failed")
		}
	}

	p.state = protocol.StatePaused
	p.publishLocked(protocol.NewStatusNotification(p.state))
	return nil
}

func (p *Player) playPause() error {
	if p.CurrentState() == protocol.StatePlaying {
		return p.pause()
	}
	return p.play()
}

func (p *Player) stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

// stopLocked stops playback without clearing the queue.
func (p *Player) stopLocked() {
	if p.audio != nil {
		if err := p.audio.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("audio backend stop failed")
		}
	}
	p.state = protocol.StateStopped
	p.position = 0
	p.publishLocked(protocol.NewStatusNotification(p.state))
}

func (p *Player) next() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.nextLocked()
}

func (p *Player) nextLocked() error {
	pos, ok := p.list.CurrentPosition()
	if !ok {
		return ErrNoTrack
	}

	if p.list.FindTrackByPosition(pos+1) == nil {
		// End of the queue: stop, no wraparound.
		p.list.SetTrackStatus(pos, music.StatusPlayed)
		p.stopLocked()
		p.publishLocked(protocol.NewTrackListNotification(p.list.Copy()))
		return nil
	}
	p.startTrackLocked(pos + 1)
	return nil
}

func (p *Player) previous() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos, ok := p.list.CurrentPosition()
	if !ok {
		return ErrNoTrack
	}
	if p.list.FindTrackByPosition(pos-1) == nil {
		// Before the start of the queue: no-op.
		return nil
	}
	p.startTrackLocked(pos - 1)
	return nil
}

func (p *Player) skipTo(pos int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.list.FindTrackByPosition(pos) == nil {
		return errors.Mark(errors.Newf("no track at position %d", pos), protocol.ErrInvalidTarget)
	}
	p.startTrackLocked(pos)
	return nil
}

// startTrackLocked makes pos the playing track: everything before it is
// played, everything after it unplayed. The clock restarts.
func (p *Player) startTrackLocked(pos int) {
	for _, t := range p.list.AllTracks() {
		switch {
		case t.Position < pos:
			t.Status = music.StatusPlayed
		case t.Position == pos:
			t.Status = music.StatusPlaying
		default:
			t.Status = music.StatusUnplayed
		}
	}
	p.position = 0
	p.state = protocol.StatePlaying

	track := p.list.FindTrackByPosition(pos)
	p.loadStreamLocked(track)

	p.publishLocked(protocol.NewTrackListNotification(p.list.Copy()))
	p.publishLocked(protocol.NewStatusNotification(p.state))
	p.publishLocked(protocol.NewPositionNotification(p.clockLocked()))
}

// loadStreamLocked resolves the stream URL for a track and hands it to the
// audio backend. Resolution failures are surfaced as an error notification;
// the state machine proceeds.
func (p *Player) loadStreamLocked(track *music.Track) {
	if track.StreamURL == "" && p.catalog != nil {
		p.publishLocked(protocol.Notification{Type: protocol.NotificationBuffering, Buffering: true})
		ctx, cancel := context.WithTimeout(context.Background(), p.config.FetchTimeout)
		url, err := p.catalog.TrackURL(ctx, track.ID)
		cancel()
		if err != nil {
			zlog.Warn().Err(err).Uint("track_id", track.ID).Msg("stream url resolution failed")
			p.publishLocked(protocol.Notification{Type: protocol.NotificationError, Message: err.Error()})
		} else {
			track.StreamURL = url
		}
		p.publishLocked(protocol.Notification{Type: protocol.NotificationBuffering, Buffering: false})
	}

	if p.audio == nil {
		return
	}
	if track.StreamURL != "" {
		if err := p.audio.Load(track.StreamURL); err != nil {
			zlog.Warn().Err(err).Msg("audio backend load failed")
		}
	}
	if err := p.audio.Play(); err != nil {
		zlog.Warn().Err(err).Msg("audio backend play failed")
	}
}

func (p *Player) jump(delta time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.list.CurrentTrack()
	if cur == nil {
		return ErrNoTrack
	}

	pos := p.position + delta
	if pos < 0 {
		pos = 0
	}
	if cur.Duration > 0 && pos > cur.Duration {
		pos = cur.Duration
	}
	p.position = pos

	if p.audio != nil {
		if err := p.audio.Seek(pos); err != nil {
			zlog.Warn().Err(err).Msg("audio backend seek failed")
		}
	}

	p.publishLocked(protocol.NewPositionNotification(p.clockLocked()))
	return nil
}

func (p *Player) playAlbum(ctx context.Context, albumID string) error {
	album, err := p.fetchAlbum(ctx, albumID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.replaceQueueLocked(album.Tracks)
	p.list.SetAlbum(album.Ref())
	p.startTrackLocked(1)
	return nil
}

func (p *Player) playPlaylist(ctx context.Context, playlistID int64) error {
	playlist, err := p.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.replaceQueueLocked(playlist.Tracks)
	ref := *playlist
	ref.Tracks = nil
	p.list.SetPlaylist(&ref)
	p.startTrackLocked(1)
	return nil
}

func (p *Player) playTrack(ctx context.Context, trackID uint) error {
	if p.catalog == nil {
		return errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	track, err := p.catalog.Track(fetchCtx, trackID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.replaceQueueLocked([]music.Track{*track})
	p.list.SetListType(tracklist.ListTypeTrack)
	p.startTrackLocked(1)
	return nil
}

func (p *Player) playURI(uri string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.replaceQueueLocked([]music.Track{{Title: uri, StreamURL: uri}})
	p.list.SetListType(tracklist.ListTypeTrack)
	p.startTrackLocked(1)
	return nil
}

// replaceQueueLocked replaces the tracklist wholesale, implicitly stopping
// any prior playback.
func (p *Player) replaceQueueLocked(tracks []music.Track) {
	if p.audio != nil && p.state == protocol.StatePlaying {
		if err := p.audio.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("audio backend stop failed")
		}
	}
	p.list.Clear()
	for i := range tracks {
		t := tracks[i]
		t.Status = music.StatusUnplayed
		p.list.Append(&t)
	}
	p.position = 0
}

func (p *Player) fetchAlbum(ctx context.Context, id string) (*music.Album, error) {
	if p.catalog == nil {
		return nil, errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	return p.catalog.Album(fetchCtx, id)
}

func (p *Player) fetchPlaylist(ctx context.Context, id int64) (*music.Playlist, error) {
	if p.catalog == nil {
		return nil, errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	return p.catalog.Playlist(fetchCtx, id)
}

func (p *Player) search(ctx context.Context, query string) response {
	if p.catalog == nil {
		return response{err: errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	results, err := p.catalog.Search(fetchCtx, query)
	if err != nil {
		return response{err: err}
	}
	return response{results: &protocol.QueryResults{SearchResults: results}}
}

func (p *Player) fetchArtistAlbums(ctx context.Context, artistID int) response {
	if p.catalog == nil {
		return response{err: errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	albums, err := p.catalog.ArtistAlbums(fetchCtx, artistID)
	if err != nil {
		return response{err: err}
	}
	return response{results: &protocol.QueryResults{
		ArtistAlbums: &protocol.ArtistAlbums{ArtistID: artistID, Albums: albums},
	}}
}

func (p *Player) fetchPlaylistTracks(ctx context.Context, playlistID int64) response {
	playlist, err := p.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return response{err: err}
	}
	return response{results: &protocol.QueryResults{
		PlaylistTracks: &protocol.PlaylistTracks{PlaylistID: playlistID, Tracks: playlist.Tracks},
	}}
}

func (p *Player) fetchUserPlaylists(ctx context.Context) response {
	if p.catalog == nil {
		return response{err: errors.Mark(errors.New("no catalog configured"), protocol.ErrUnavailable)}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()
	playlists, err := p.catalog.UserPlaylists(fetchCtx)
	if err != nil {
		return response{err: err}
	}
	return response{results: &protocol.QueryResults{UserPlaylists: playlists}}
}

func (p *Player) quit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.saveResumeLocked()

	if p.audio != nil {
		if err := p.audio.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("audio backend stop failed")
		}
	}

	p.state = protocol.StateQuit
	p.publishLocked(protocol.Notification{Type: protocol.NotificationQuit})
	return nil
}

// shutdown handles context cancellation: persists state and tells
// subscribers to disconnect, same as an explicit quit.
func (p *Player) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == protocol.StateQuit {
		return
	}
	p.saveResumeLocked()
	p.state = protocol.StateQuit
	p.publishLocked(protocol.Notification{Type: protocol.NotificationQuit})
}

func (p *Player) saveResumeLocked() {
	if p.resume == nil || p.list.Len() == 0 {
		return
	}
	state := protocol.ResumeState{
		TrackList: p.list.Copy(),
		Position:  p.position,
		SavedAt:   time.Now(),
	}
	if err := p.resume.Save(state); err != nil {
		zlog.Warn().Err(err).Msg("failed to save resume state")
	}
}

// tick advances the position clock while playing and handles natural track
// end.
func (p *Player) tick(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != protocol.StatePlaying {
		return
	}
	cur := p.list.CurrentTrack()
	if cur == nil {
		return
	}

	p.position += p.config.PositionTick
	if cur.Duration > 0 && p.position >= cur.Duration {
		if err := p.nextLocked(); err != nil {
			zlog.Warn().Err(err).Msg("track end advance failed")
		}
		return
	}
	p.publishLocked(protocol.NewPositionNotification(p.clockLocked()))
}

func (p *Player) clockLocked() protocol.Clock {
	clock := protocol.Clock{Position: p.position}
	if cur := p.list.CurrentTrack(); cur != nil {
		clock.Duration = cur.Duration
	}
	return clock
}

func (p *Player) publishLocked(n protocol.Notification) {
	if p.hub != nil {
		p.hub.Publish(n)
	}
}
