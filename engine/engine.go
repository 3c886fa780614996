package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeptore/tonearm/config"
	"github.com/xeptore/tonearm/library"
)

type state uint8

const (
	stateIdle state = iota
	statePlaying
	statePaused
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePlaying:
		return "playing"
	case statePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Engine serializes every playback mutation through a single worker
// goroutine. Callers feed it play requests and control signals; the worker
// answers with exhaustion notifications and recoverable playback errors.
// Only the worker touches the sink.
type Engine struct {
	logger  zerolog.Logger
	sink    Sink
	play    chan library.Track
	ctrl    chan bool
	notify  chan bool
	errs    chan PlaybackError
	stopped chan struct{}
}

func New(logger zerolog.Logger, sink Sink) *Engine {
	return &Engine{
		logger:  logger,
		sink:    sink,
		play:    make(chan library.Track, config.EngineInboundBuffer),
		ctrl:    make(chan bool, config.EngineInboundBuffer),
		notify:  make(chan bool, config.EngineNotifyBuffer),
		errs:    make(chan PlaybackError, config.EngineNotifyBuffer),
		stopped: make(chan struct{}),
	}
}

// Play asks the worker to start the track, replacing whatever is sounding.
func (e *Engine) Play(t library.Track) {
	select {
	case e.play <- t:
	case <-e.stopped:
		e.logger.Warn().Func(t.Log).Msg("Engine has stopped. Dropping play request.")
	}
}

// TogglePause flips between playing and paused. It does nothing while idle.
func (e *Engine) TogglePause() {
	e.signal(true)
}

// Stop silences the sink and returns the worker to idle. It does nothing
// while idle.
func (e *Engine) Stop() {
	e.signal(false)
}

func (e *Engine) signal(toggle bool) {
	select {
	case e.ctrl <- toggle:
	case <-e.stopped:
		e.logger.Warn().Bool("toggle", toggle).Msg("Engine has stopped. Dropping control signal.")
	}
}

// Notifications delivers true once per track that played to its natural
// end. Nothing else auto-advances playback.
func (e *Engine) Notifications() <-chan bool {
	return e.notify
}

// Errors delivers playback failures the worker survived.
func (e *Engine) Errors() <-chan PlaybackError {
	return e.errs
}

// Run owns the sink until ctx is canceled. It never returns on playback
// failures; those are reported through Errors.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopped)
	st := stateIdle
	for {
		select {
		case <-ctx.Done():
			if st != stateIdle {
				e.sink.Stop()
			}
			e.logger.Debug().Str("state", st.String()).Msg("Engine worker is shutting down.")
			return ctx.Err()
		case t := <-e.play:
			if err := e.sink.Play(t); nil != err {
				e.sink.Stop()
				st = stateIdle
				e.emitError(ctx, PlaybackError{Track: t, Err: err})
				continue
			}
			st = statePlaying
			e.logger.Debug().Func(t.Log).Msg("Engine started a track.")
		case toggle := <-e.ctrl:
			if toggle {
				switch st {
				case statePlaying:
					e.sink.TogglePause()
					st = statePaused
				case statePaused:
					e.sink.TogglePause()
					st = statePlaying
				case stateIdle:
				}
				continue
			}
			if st != stateIdle {
				e.sink.Stop()
				st = stateIdle
			}
		case <-e.sink.Done():
			if st == stateIdle {
				e.logger.Warn().Msg("Received a track exhaustion signal while idle. Ignoring.")
				continue
			}
			st = stateIdle
			e.emitExhausted(ctx)
		}
	}
}

func (e *Engine) emitExhausted(ctx context.Context) {
	select {
	case e.notify <- true:
	case <-ctx.Done():
		e.logger.Warn().Msg("Shutting down. Dropping a track exhaustion notification.")
	}
}

func (e *Engine) emitError(ctx context.Context, perr PlaybackError) {
	select {
	case e.errs <- perr:
	case <-ctx.Done():
		e.logger.Warn().Func(perr.Track.Log).Msg("Shutting down. Dropping a playback error.")
	}
}
