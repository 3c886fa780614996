package engine

import (
	"github.com/xeptore/tonearm/library"
)

// Sink is the audio output the engine drives. Implementations own the
// device: Play replaces whatever is sounding, TogglePause flips pause on
// the current track, Stop silences without a Done signal, and Done delivers
// exactly one signal per track that reached its natural end.
type Sink interface {
	Play(t library.Track) error
	TogglePause()
	Stop()
	Done() <-chan struct{}
	Close() error
}

// PlaybackError reports a track the sink refused to start. It travels the
// engine's error channel; a playback error never terminates the engine.
type PlaybackError struct {
	Track library.Track
	Err   error
}
