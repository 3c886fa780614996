package library

import (
	"github.com/samber/lo"
)

// Stats summarizes a library for display and logging.
type Stats struct {
	Artists      int `json:"artists"`
	Albums       int `json:"albums"`
	Tracks       int `json:"tracks"`
	TotalSeconds int `json:"total_seconds"`
}

func (l *Library) Stats() Stats {
	albums := lo.SumBy(l.Artists, func(a Artist) int { return len(a.Albums) })
	var tracks, totalSeconds int
	for t := range l.Tracks() {
		tracks++
		totalSeconds += t.Duration
	}
	return Stats{
		Artists:      len(l.Artists),
		Albums:       albums,
		Tracks:       tracks,
		TotalSeconds: totalSeconds,
	}
}
