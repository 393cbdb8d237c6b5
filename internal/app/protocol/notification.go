package protocol

import (
	"github.com/hifigo/hifigo/internal/app/tracklist"
)

// NotificationType discriminates broadcast payloads.
type NotificationType string

const (
	NotificationCurrentTrackList NotificationType = "currentTrackList" // Full queue snapshot
	NotificationPosition         NotificationType = "position"         // Playback clock
	NotificationStatus           NotificationType = "status"           // Playback state
	NotificationBuffering        NotificationType = "buffering"        // Stream resolution in progress
	NotificationError            NotificationType = "error"            // Collaborator failure
	NotificationQuit             NotificationType = "quit"             // Player is shutting down
)

// Notification is a self-contained broadcast event. Consumers never need a
// prior notification to interpret one. SequenceNo is assigned by the hub at
// publish time and increases monotonically, letting observers detect gaps
// caused by lossy per-subscriber buffering.
type Notification struct {
	Type       NotificationType     `json:"type"`
	SequenceNo uint64               `json:"sequence_no,omitempty"`
	TrackList  *tracklist.TrackList `json:"tracklist,omitempty"`
	Clock      *Clock               `json:"clock,omitempty"`
	Status     State                `json:"status,omitempty"`
	Buffering  bool                 `json:"buffering,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// NewTrackListNotification builds a queue snapshot notification.
func NewTrackListNotification(tl *tracklist.TrackList) Notification {
	return Notification{Type: NotificationCurrentTrackList, TrackList: tl}
}

// NewPositionNotification builds a playback clock notification.
func NewPositionNotification(clock Clock) Notification {
	return Notification{Type: NotificationPosition, Clock: &clock}
}

// NewStatusNotification builds a playback state notification.
func NewStatusNotification(state State) Notification {
	return Notification{Type: NotificationStatus, Status: state}
}
