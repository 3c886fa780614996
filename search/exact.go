package search

import (
	"github.com/xeptore/tonearm/library"
)

// ExactTitles maps each distinct track title to the coordinate of its first
// occurrence in library order. Duplicate titles keep the earliest
// coordinate.
func ExactTitles(lib *library.Library) map[string]TrackCoord {
	titles := make(map[string]TrackCoord)
	for i, artist := range lib.Artists {
		for j, album := range artist.Albums {
			for k, track := range album.Tracks {
				if _, ok := titles[track.Title]; !ok {
					titles[track.Title] = TrackCoord{Artist: i, Album: j, Track: k}
				}
			}
		}
	}
	return titles
}
