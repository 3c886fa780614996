package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/library"
)

// sinkSampleRate is the fixed device rate. Tracks encoded at other rates
// are resampled on the fly.
const sinkSampleRate = beep.SampleRate(44100)

// BeepSink plays tracks through the machine speaker. The device is
// initialized once, on the first Play. Methods are safe for concurrent use,
// although the engine worker is the only intended caller.
type BeepSink struct {
	logger zerolog.Logger
	mu     sync.Mutex
	ready  bool
	stream beep.StreamSeekCloser
	ctrl   *beep.Ctrl
	done   chan struct{}
}

func NewBeepSink(logger zerolog.Logger) *BeepSink {
	return &BeepSink{
		logger: logger,
		mu:     sync.Mutex{},
		ready:  false,
		stream: nil,
		ctrl:   nil,
		done:   make(chan struct{}, 1),
	}
}

func (s *BeepSink) Play(t library.Track) (err error) {
	f, err := os.Open(t.Path)
	if nil != err {
		flawP := flaw.P{"track": t.FlawP(), "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to open track file: %v", err)).Append(flawP)
	}
	streamer, format, err := library.Decode(f, filepath.Ext(t.Path))
	if nil != err {
		if closeErr := f.Close(); nil != closeErr && !errors.Is(closeErr, os.ErrClosed) {
			err = errors.Join(err, closeErr)
		}
		flawP := flaw.P{"track": t.FlawP(), "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to decode track file: %v", err)).Append(flawP)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		if err := speaker.Init(sinkSampleRate, sinkSampleRate.N(time.Second/10)); nil != err {
			if closeErr := streamer.Close(); nil != closeErr && !errors.Is(closeErr, os.ErrClosed) {
				err = errors.Join(err, closeErr)
			}
			flawP := flaw.P{"track": t.FlawP(), "err_debug_tree": errutil.Tree(err).FlawP()}
			return flaw.From(fmt.Errorf("failed to initialize speaker: %v", err)).Append(flawP)
		}
		s.ready = true
	}

	// Clear blocks on the device mutex, so any end-of-track callback for the
	// removed sequence has already fired by the time it returns. Draining
	// after it leaves no stale signal behind.
	speaker.Clear()
	s.drainDone()
	s.closeStream()

	var src beep.Streamer = streamer
	if format.SampleRate != sinkSampleRate {
		src = beep.Resample(4, format.SampleRate, sinkSampleRate, streamer)
	}
	ctrl := &beep.Ctrl{Streamer: src, Paused: false}
	s.stream = streamer
	s.ctrl = ctrl
	speaker.Play(beep.Seq(ctrl, beep.Callback(s.signalDone)))
	return nil
}

// TogglePause flips the pause flag of the current track under the device
// lock. Without a current track nothing happens.
func (s *BeepSink) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nil == s.ctrl {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = !s.ctrl.Paused
	speaker.Unlock()
}

// Stop silences the device and releases the current stream without emitting
// a Done signal.
func (s *BeepSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	speaker.Clear()
	s.drainDone()
	s.closeStream()
	s.ctrl = nil
}

func (s *BeepSink) Done() <-chan struct{} {
	return s.done
}

// Close releases the current stream. The speaker device stays open; the
// process owns it until exit.
func (s *BeepSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		speaker.Clear()
	}
	if nil != s.stream {
		if err := s.stream.Close(); nil != err && !errors.Is(err, os.ErrClosed) {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return flaw.From(fmt.Errorf("failed to close track stream: %v", err)).Append(flawP)
		}
		s.stream = nil
	}
	s.ctrl = nil
	return nil
}

func (s *BeepSink) signalDone() {
	select {
	case s.done <- struct{}{}:
	default:
	}
}

func (s *BeepSink) drainDone() {
	select {
	case <-s.done:
	default:
	}
}

// closeStream is called with mu held.
func (s *BeepSink) closeStream() {
	if nil == s.stream {
		return
	}
	// The decoder owns the file handle and may have closed it at the end of
	// the stream already.
	if err := s.stream.Close(); nil != err && !errors.Is(err, os.ErrClosed) {
		s.logger.Warn().Err(err).Msg("Failed to close the previous track stream.")
	}
	s.stream = nil
}
