package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/library"
)

// ArtistCoord addresses an artist by position in the library.
type ArtistCoord struct {
	Artist int
}

// AlbumCoord addresses an album by artist and album positions.
type AlbumCoord struct {
	Artist int
	Album  int
}

// TrackCoord addresses a track by artist, album, and track positions.
type TrackCoord struct {
	Artist int
	Album  int
	Track  int
}

// Group bundles the three scoped indexes built from one library snapshot.
type Group struct {
	Artists *index[ArtistCoord]
	Albums  *index[AlbumCoord]
	Tracks  *index[TrackCoord]
}

// Build walks the library once per scope and fills the three indexes. The
// group holds positional coordinates, so the library must not be reordered
// while the group is in use.
func Build(ctx context.Context, lib *library.Library) (*Group, error) {
	g := &Group{
		Artists: newIndex[ArtistCoord](),
		Albums:  newIndex[AlbumCoord](),
		Tracks:  newIndex[TrackCoord](),
	}

	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		if errutil.IsContext(wgCtx) {
			return wgCtx.Err()
		}
		for i, artist := range lib.Artists {
			g.Artists.add(ArtistCoord{Artist: i}, artist.Title)
		}
		return nil
	})
	wg.Go(func() error {
		if errutil.IsContext(wgCtx) {
			return wgCtx.Err()
		}
		for i, artist := range lib.Artists {
			for j, album := range artist.Albums {
				g.Albums.add(AlbumCoord{Artist: i, Album: j}, album.Title)
			}
		}
		return nil
	})
	wg.Go(func() error {
		if errutil.IsContext(wgCtx) {
			return wgCtx.Err()
		}
		for i, artist := range lib.Artists {
			for j, album := range artist.Albums {
				for k, track := range album.Tracks {
					g.Tracks.add(TrackCoord{Artist: i, Album: j, Track: k}, track.Title)
				}
			}
		}
		return nil
	})
	if err := wg.Wait(); nil != err {
		return nil, err
	}
	return g, nil
}

// Results carries the hits of a single query. Only the slice matching the
// query scope is populated; the other two stay nil.
type Results struct {
	Scope   Scope
	Artists []ArtistCoord
	Albums  []AlbumCoord
	Tracks  []TrackCoord
}

func (r Results) Len() int {
	return len(r.Artists) + len(r.Albums) + len(r.Tracks)
}

// Search runs the query against the index its scope selects. Hits come back
// ordered best-first.
func (g *Group) Search(q Query) Results {
	switch q.Scope {
	case ScopeArtist:
		return Results{Scope: q.Scope, Artists: g.Artists.search(q.Term)}
	case ScopeAlbum:
		return Results{Scope: q.Scope, Albums: g.Albums.search(q.Term)}
	case ScopeTitle:
		return Results{Scope: q.Scope, Tracks: g.Tracks.search(q.Term)}
	default:
		panic(errutil.UnknownError(fmt.Errorf("unexpected query scope %q", q.Scope)))
	}
}
