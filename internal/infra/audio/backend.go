// Package audio provides audio output backends behind the player's Backend
// interface. Decoding and device control are outside the playback core; the
// backends here only receive the sequenced calls.
package audio

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/hifigo/hifigo/internal/app/playback"
)

// New creates a backend by type name with backend-specific settings.
func New(backendType string, settings map[string]any) (playback.Backend, error) {
	switch backendType {
	case "null", "":
		return NewNullBackend(), nil
	case "log":
		var cfg LogConfig
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "invalid log backend settings")
		}
		return NewLogBackend(cfg), nil
	default:
		return nil, errors.Newf("unknown audio backend %q", backendType)
	}
}

// NullBackend discards all playback calls. Used when an external process
// owns the audio device and only follows broadcast notifications.
type NullBackend struct{}

// NewNullBackend creates a null backend.
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Load(uri string) error             { return nil }
func (b *NullBackend) Play() error                       { return nil }
func (b *NullBackend) Pause() error                      { return nil }
func (b *NullBackend) Stop() error                       { return nil }
func (b *NullBackend) Seek(position time.Duration) error { return nil }

// LogConfig represents log backend settings.
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug" or "info"
}

// LogBackend logs every playback call. Useful for development and for
// verifying the call sequencing without an audio device.
type LogBackend struct {
	debug bool
}

// NewLogBackend creates a log backend.
func NewLogBackend(cfg LogConfig) *LogBackend {
	return &LogBackend{debug: cfg.Level == "debug"}
}

func (b *LogBackend) event() *zerolog.Event {
	if b.debug {
		return zlog.Debug()
	}
	return zlog.Info()
}

func (b *LogBackend) Load(uri string) error {
	b.event().Str("uri", uri).Msg("audio: load")
	return nil
}

func (b *LogBackend) Play() error {
	b.event().Msg("audio: play")
	return nil
}

func (b *LogBackend) Pause() error {
	b.event().Msg("audio: pause")
	return nil
}

func (b *LogBackend) Stop() error {
	b.event().Msg("audio: stop")
	return nil
}

func (b *LogBackend) Seek(position time.Duration) error {
	b.event().Dur("position", position).Msg("audio: seek")
	return nil
}
