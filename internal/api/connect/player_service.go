package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hifigo/hifigo/internal/app/notification"
	"github.com/hifigo/hifigo/internal/app/playback"
	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/app/tracklist"
)

// Procedure paths, in the shape generated code would use.
const (
	DispatchProcedure  = "/hifigo.v1.PlayerService/Dispatch"
	SnapshotProcedure  = "/hifigo.v1.PlayerService/Snapshot"
	SubscribeProcedure = "/hifigo.v1.PlayerService/Subscribe"
)

// DispatchResponse carries the outcome of an action. Query actions include
// their results; results are never broadcast.
type DispatchResponse struct {
	OK      bool                   `json:"ok"`
	Results *protocol.QueryResults `json:"results,omitempty"`
}

// SnapshotRequest is empty; the snapshot is a point-in-time read.
type SnapshotRequest struct{}

// SnapshotResponse is the synchronous state read for newly-joining
// consumers.
type SnapshotResponse struct {
	TrackList *tracklist.TrackList `json:"tracklist"`
	Status    protocol.State       `json:"status"`
	Clock     protocol.Clock       `json:"clock"`
}

// SubscribeRequest is empty; a subscription starts at the current state.
type SubscribeRequest struct{}

// PlayerService exposes the player over Connect RPC.
type PlayerService struct {
	player *playback.Player
	hub    *notification.Hub
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(player *playback.Player, hub *notification.Hub) *PlayerService {
	return &PlayerService{player: player, hub: hub}
}

// Handlers returns the HTTP handlers to mount, keyed by procedure path.
func (s *PlayerService) Handlers(opts ...connect.HandlerOption) map[string]http.Handler {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return map[string]http.Handler{
		DispatchProcedure:  connect.NewUnaryHandler(DispatchProcedure, s.Dispatch, opts...),
		SnapshotProcedure:  connect.NewUnaryHandler(SnapshotProcedure, s.Snapshot, opts...),
		SubscribeProcedure: connect.NewServerStreamHandler(SubscribeProcedure, s.Subscribe, opts...),
	}
}

// Dispatch validates an action and forwards it to the state machine.
func (s *PlayerService) Dispatch(
	ctx context.Context,
	req *connect.Request[protocol.Action],
) (*connect.Response[DispatchResponse], error) {
	action := *req.Msg
	if err := action.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	results, err := s.player.Dispatch(ctx, action)
	if err != nil {
		return nil, asConnectError(err)
	}

	return connect.NewResponse(&DispatchResponse{OK: true, Results: results}), nil
}

// Snapshot returns a point-in-time copy of the player state.
func (s *PlayerService) Snapshot(
	ctx context.Context,
	req *connect.Request[SnapshotRequest],
) (*connect.Response[SnapshotResponse], error) {
	return connect.NewResponse(&SnapshotResponse{
		TrackList: s.player.CurrentTrackList(),
		Status:    s.player.CurrentState(),
		Clock:     s.player.CurrentClock(),
	}), nil
}

// Subscribe streams notifications to the client. A fresh connection first
// receives an explicit current-state snapshot (tracklist, position, status)
// outside the broadcast path, then every notification published after the
// subscription was created, in publish order, until the client disconnects
// or the player quits.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[SubscribeRequest],
	stream *connect.ServerStream[protocol.Notification],
) error {
	sub := s.hub.Subscribe()
	defer sub.Cancel()

	initial := []protocol.Notification{
		protocol.NewTrackListNotification(s.player.CurrentTrackList()),
		protocol.NewPositionNotification(s.player.CurrentClock()),
		protocol.NewStatusNotification(s.player.CurrentState()),
	}
	for _, n := range initial {
		n.SequenceNo = s.hub.NextSequenceNo()
		if err := stream.Send(&n); err != nil {
			return err
		}
	}

	for {
		select {
		case n, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := stream.Send(&n); err != nil {
				zlog.Debug().Err(err).Str("subscription", sub.ID()).Msg("subscriber send failed")
				return err
			}
			if n.Type == protocol.NotificationQuit {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// asConnectError maps the player error taxonomy onto connect codes.
func asConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, protocol.ErrInvalidTarget):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, protocol.ErrMalformed):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, protocol.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, protocol.ErrUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, playback.ErrQuit):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, playback.ErrQueueEmpty),
		errors.Is(err, playback.ErrNoTrack),
		errors.Is(err, playback.ErrNotPlaying):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
