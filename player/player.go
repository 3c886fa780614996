package player

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xeptore/tonearm/engine"
	"github.com/xeptore/tonearm/library"
	"github.com/xeptore/tonearm/playqueue"
	"github.com/xeptore/tonearm/search"
	"github.com/xeptore/tonearm/sliceutil"
)

// Player is the controller between user intent and the engine worker. It
// owns the playback queue and the now-playing slot; the engine owns the
// sound. Exhaustion notifications are the only thing that advances the
// queue.
type Player struct {
	logger     zerolog.Logger
	lib        *library.Library
	eng        *engine.Engine
	mu         sync.Mutex
	queue      *playqueue.Queue
	nowPlaying library.Track
}

func New(logger zerolog.Logger, lib *library.Library, eng *engine.Engine) *Player {
	return &Player{
		logger:     logger,
		lib:        lib,
		eng:        eng,
		mu:         sync.Mutex{},
		queue:      playqueue.New(),
		nowPlaying: library.Dummy(),
	}
}

// PlayTrack starts the track immediately, replacing whatever is playing.
// The queue is left alone.
func (p *Player) PlayTrack(t library.Track) {
	p.mu.Lock()
	p.nowPlaying = t
	p.mu.Unlock()
	p.eng.Play(t)
	p.logger.Info().Func(t.Log).Msg("Playing track.")
}

// PlayAlbum starts the album's first track immediately and front-inserts
// the rest so the head of the queue continues the album in order.
func (p *Player) PlayAlbum(c search.AlbumCoord) bool {
	album, ok := p.lib.AlbumAt(c.Artist, c.Album)
	if !ok || len(album.Tracks) == 0 {
		return false
	}

	p.mu.Lock()
	for _, t := range sliceutil.Reversed(album.Tracks[1:]) {
		p.queue.AddFront(t)
	}
	p.nowPlaying = album.Tracks[0]
	p.mu.Unlock()

	p.eng.Play(album.Tracks[0])
	p.logger.Info().Str("album", album.Title).Str("artist", album.Artist).Int("tracks", len(album.Tracks)).Msg("Playing album.")
	return true
}

// QueueAlbumNext front-inserts the whole album so it plays next, in order,
// once the current track ends.
func (p *Player) QueueAlbumNext(c search.AlbumCoord) bool {
	album, ok := p.lib.AlbumAt(c.Artist, c.Album)
	if !ok {
		return false
	}

	p.mu.Lock()
	for _, t := range sliceutil.Reversed(album.Tracks) {
		p.queue.AddFront(t)
	}
	p.mu.Unlock()

	p.logger.Info().Str("album", album.Title).Str("artist", album.Artist).Int("tracks", len(album.Tracks)).Msg("Queued album next.")
	return true
}

// QueueAlbum appends the whole album to the tail of the queue.
func (p *Player) QueueAlbum(c search.AlbumCoord) bool {
	album, ok := p.lib.AlbumAt(c.Artist, c.Album)
	if !ok {
		return false
	}

	p.mu.Lock()
	for _, t := range album.Tracks {
		p.queue.Add(t)
	}
	p.mu.Unlock()

	p.logger.Info().Str("album", album.Title).Str("artist", album.Artist).Int("tracks", len(album.Tracks)).Msg("Queued album.")
	return true
}

// QueueTrack appends one track to the tail of the queue.
func (p *Player) QueueTrack(t library.Track) {
	p.mu.Lock()
	p.queue.Add(t)
	p.mu.Unlock()
	p.logger.Info().Func(t.Log).Msg("Queued track.")
}

// PauseToggle flips between playing and paused.
func (p *Player) PauseToggle() {
	p.eng.TogglePause()
}

// Stop silences playback and clears the now-playing slot. Queued tracks
// stay queued.
func (p *Player) Stop() {
	p.mu.Lock()
	p.nowPlaying = library.Dummy()
	p.mu.Unlock()
	p.eng.Stop()
}

// NowPlaying returns the current track, or the dummy track when nothing is
// playing.
func (p *Player) NowPlaying() library.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowPlaying
}

// QueueSnapshot copies the queued tracks in play order along with their
// total seconds.
func (p *Player) QueueSnapshot() ([]library.Track, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tracks := make([]library.Track, 0, p.queue.Len())
	for _, t := range p.queue.Tracks() {
		tracks = append(tracks, t)
	}
	return tracks, p.queue.TotalSeconds()
}

// ShuffleQueue permutes the queued tracks.
func (p *Player) ShuffleQueue() {
	p.mu.Lock()
	p.queue.Shuffle()
	p.mu.Unlock()
}

// ClearQueue drops every queued track.
func (p *Player) ClearQueue() {
	p.mu.Lock()
	p.queue.Clear()
	p.mu.Unlock()
}

// Idle reports whether nothing is playing and nothing is queued.
func (p *Player) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowPlaying.IsDummy() && p.queue.Empty()
}

// Run consumes engine notifications until ctx is canceled. A track playing
// to its natural end pops the next queued track into the engine; an empty
// queue resets the now-playing slot. Playback errors are logged and
// advance nothing.
func (p *Player) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case exhausted := <-p.eng.Notifications():
			if !exhausted {
				p.logger.Warn().Msg("Received a non-exhaustion notification. Ignoring.")
				continue
			}
			p.advance()
		case perr := <-p.eng.Errors():
			p.logger.Warn().Func(perr.Track.Log).AnErr("reason", perr.Err).Msg("Track failed to play.")
			p.mu.Lock()
			if p.nowPlaying.Path == perr.Track.Path {
				p.nowPlaying = library.Dummy()
			}
			p.mu.Unlock()
		}
	}
}

func (p *Player) advance() {
	p.mu.Lock()
	if p.queue.Empty() {
		p.nowPlaying = library.Dummy()
		p.mu.Unlock()
		p.logger.Info().Msg("Queue is drained.")
		return
	}
	next := p.queue.Take()
	p.nowPlaying = next
	p.mu.Unlock()

	p.eng.Play(next)
	p.logger.Info().Func(next.Log).Int("queued", p.queueLen()).Msg("Advancing to the next queued track.")
}

func (p *Player) queueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}
