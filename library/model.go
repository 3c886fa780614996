package library

import (
	"iter"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Track is a single ingested audio file. Values are immutable once built;
// copies placed in queues or handed to the engine never alias the library.
type Track struct {
	Title       string
	Album       string
	AlbumArtist string
	Year        int
	Duration    int // whole seconds
	Path        string
}

// Dummy returns the "nothing currently playing" sentinel, recognizable by
// its empty title.
func Dummy() Track {
	return Track{}
}

func (t Track) IsDummy() bool {
	return t.Title == ""
}

func (t Track) FlawP() flaw.P {
	return flaw.P{
		"title":            t.Title,
		"album":            t.Album,
		"album_artist":     t.AlbumArtist,
		"year":             t.Year,
		"duration_seconds": t.Duration,
		"path":             t.Path,
	}
}

func (t Track) Log(e *zerolog.Event) {
	e.
		Str("title", t.Title).
		Str("album", t.Album).
		Str("album_artist", t.AlbumArtist).
		Int("duration_seconds", t.Duration).
		Str("path", t.Path)
}

type Album struct {
	Title  string
	Artist string
	Year   int
	Tracks []Track
}

type Artist struct {
	Title  string
	Albums []Album
}

// Library is the full Artist→Album→Track tree for one music collection,
// case-insensitively sorted by artist title. It is read-only after Build or
// ReadSnapshot and safe to share by reference across goroutines.
type Library struct {
	Artists []Artist
}

func (l *Library) ArtistAt(artist int) (Artist, bool) {
	if artist < 0 || artist >= len(l.Artists) {
		return Artist{}, false
	}
	return l.Artists[artist], true
}

func (l *Library) AlbumAt(artist, album int) (Album, bool) {
	a, ok := l.ArtistAt(artist)
	if !ok || album < 0 || album >= len(a.Albums) {
		return Album{}, false
	}
	return a.Albums[album], true
}

func (l *Library) TrackAt(artist, album, track int) (Track, bool) {
	a, ok := l.AlbumAt(artist, album)
	if !ok || track < 0 || track >= len(a.Tracks) {
		return Track{}, false
	}
	return a.Tracks[track], true
}

// Tracks yields every track in library order (artist, album, track).
func (l *Library) Tracks() iter.Seq[Track] {
	return func(yield func(Track) bool) {
		for _, artist := range l.Artists {
			for _, album := range artist.Albums {
				for _, track := range album.Tracks {
					if !yield(track) {
						return
					}
				}
			}
		}
	}
}
