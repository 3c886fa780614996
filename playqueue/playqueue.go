package playqueue

import (
	"iter"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/xeptore/tonearm/iterutil"
	"github.com/xeptore/tonearm/library"
)

// Queue holds the tracks waiting to play, head first. The running duration
// total is maintained on every mutation so reading it never walks the
// queue. Queue is not safe for concurrent use; the player serializes
// access to it.
type Queue struct {
	tracks       []library.Track
	totalSeconds int
}

func New() *Queue {
	return &Queue{
		tracks:       nil,
		totalSeconds: 0,
	}
}

// Add appends the track to the tail of the queue.
func (q *Queue) Add(t library.Track) {
	q.tracks = append(q.tracks, t)
	q.totalSeconds += t.Duration
}

// AddFront inserts the track ahead of everything queued so far.
func (q *Queue) AddFront(t library.Track) {
	q.tracks = slices.Insert(q.tracks, 0, t)
	q.totalSeconds += t.Duration
}

// Take removes and returns the head of the queue. It panics when the queue
// is empty; callers must check Empty first.
func (q *Queue) Take() library.Track {
	if len(q.tracks) == 0 {
		panic("playqueue: take on empty queue")
	}
	head := q.tracks[0]
	q.tracks = slices.Delete(q.tracks, 0, 1)
	q.totalSeconds -= head.Duration
	return head
}

// Clear drops every queued track.
func (q *Queue) Clear() {
	q.tracks = nil
	q.totalSeconds = 0
}

// Shuffle permutes the queued tracks uniformly at random. The duration
// total is unaffected.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

func (q *Queue) Len() int {
	return len(q.tracks)
}

func (q *Queue) Empty() bool {
	return len(q.tracks) == 0
}

// TotalSeconds is the sum of queued track durations in whole seconds.
func (q *Queue) TotalSeconds() int {
	return q.totalSeconds
}

func (q *Queue) TotalDuration() time.Duration {
	return time.Duration(q.totalSeconds) * time.Second
}

// Tracks yields queue positions and tracks in play order.
func (q *Queue) Tracks() iter.Seq2[int, library.Track] {
	return iterutil.WithIndex(slices.Values(q.tracks))
}
