package library

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"
	"gopkg.in/matryer/try.v1"

	"github.com/xeptore/tonearm/config"
	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/iterutil"
	"github.com/xeptore/tonearm/pace"
	"github.com/xeptore/tonearm/throttle"
)

const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
)

// Eligible reports whether ext (as returned by filepath.Ext) is on the
// ingestion allow-list. The comparison is case-sensitive: ".MP3" is not an
// eligible extension.
func Eligible(ext string) bool {
	switch ext {
	case ExtMP3, ExtFLAC, ExtOGG:
		return true
	default:
		return false
	}
}

// Prober turns an audio file path into a Track. Failures mean the file is
// skipped, never that the scan aborts.
type Prober interface {
	Probe(ctx context.Context, path string) (Track, error)
}

type BuildReport struct {
	Scanned      int `json:"scanned"`
	Ingested     int `json:"ingested"`
	SkippedFiles int `json:"skipped_files"`
	SkippedDirs  int `json:"skipped_dirs"`
}

func (r BuildReport) Log(e *zerolog.Event) {
	e.
		Int("scanned", r.Scanned).
		Int("ingested", r.Ingested).
		Int("skipped_files", r.SkippedFiles).
		Int("skipped_dirs", r.SkippedDirs)
}

type Builder struct {
	logger zerolog.Logger
	prober Prober
}

func NewBuilder(logger zerolog.Logger, prober Prober) *Builder {
	return &Builder{
		logger: logger,
		prober: prober,
	}
}

// Build walks musicDir, ingests every eligible audio file, groups tracks
// into the Artist→Album→Track tree, sorts artists case-insensitively, and
// persists the result to snapshotFile. Per-file failures are skipped and
// counted; walk-root and persistence failures abort the build.
func (b *Builder) Build(ctx context.Context, musicDir, snapshotFile string) (*Library, BuildReport, error) {
	var report BuildReport

	candidates, skippedDirs, err := b.collect(ctx, musicDir)
	if nil != err {
		return nil, report, err
	}
	report.Scanned = len(candidates)
	report.SkippedDirs = skippedDirs

	tracks, skippedFiles, err := b.probeAll(ctx, candidates)
	if nil != err {
		return nil, report, err
	}
	report.SkippedFiles = skippedFiles
	report.Ingested = len(tracks)

	lib := &Library{Artists: nil}
	for _, t := range tracks {
		lib.insert(t)
	}
	sortArtists(lib.Artists)

	if err := b.persist(ctx, snapshotFile, lib); nil != err {
		return nil, report, err
	}

	return lib, report, nil
}

// collect returns the walk-ordered list of eligible file paths. Unreadable
// subtrees are skipped and counted; failure to walk the root is fatal.
func (b *Builder) collect(ctx context.Context, musicDir string) ([]string, int, error) {
	var (
		candidates  []string
		skippedDirs int
	)
	walkErr := filepath.WalkDir(musicDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); nil != ctxErr {
			return ctxErr
		}
		if nil != err {
			if path == musicDir {
				return err
			}
			skippedDirs++
			b.logger.Warn().Str("path", path).Str("reason", err.Error()).Msg("Skipping unreadable entry.")
			if nil != d && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if Eligible(filepath.Ext(path)) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if nil != walkErr {
		if errutil.IsContext(ctx) {
			return nil, 0, ctx.Err()
		}
		flawP := flaw.P{"music_dir": musicDir, "err_debug_tree": errutil.Tree(walkErr).FlawP()}
		return nil, 0, flaw.From(fmt.Errorf("failed to walk music dir: %v", walkErr)).Append(flawP)
	}
	return candidates, skippedDirs, nil
}

// probeAll probes candidates concurrently but commits results in walk order
// so grouping stays deterministic. Probe failures are logged and counted.
func (b *Builder) probeAll(ctx context.Context, candidates []string) ([]Track, int, error) {
	type result struct {
		track Track
		err   error
	}
	results := make([]result, len(candidates))

	prog := throttle.New(ctx, config.ScanProgressInterval)
	defer prog.Close()
	var probed atomic.Int64

	wg, wgCtx := errgroup.WithContext(ctx)
	wg.SetLimit(pace.ScanConcurrency)
	for i, path := range candidates {
		wg.Go(func() error {
			if errutil.IsContext(wgCtx) {
				return wgCtx.Err()
			}
			t, err := b.prober.Probe(wgCtx, path)
			results[i] = result{track: t, err: err}
			n := probed.Add(1)
			prog.Do(func() {
				b.logger.Info().Int64("probed", n).Int("total", len(candidates)).Msg("Scan in progress.")
			})
			return nil
		})
	}
	if err := wg.Wait(); nil != err {
		if errutil.IsContext(ctx) {
			return nil, 0, ctx.Err()
		}
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, 0, flaw.From(fmt.Errorf("failed to probe files: %v", err)).Append(flawP)
	}

	fileNo := iterutil.Count(0)
	tracks := make([]Track, 0, len(candidates))
	var skipped int
	for i, res := range results {
		n := fileNo.Next()
		if nil != res.err {
			skipped++
			b.logger.Warn().Int("file_no", n).Str("path", candidates[i]).Str("reason", res.err.Error()).Msg("Skipping unreadable or untaggable file.")
			continue
		}
		tracks = append(tracks, res.track)
	}
	return tracks, skipped, nil
}

// insert groups t under its artist and album, matching both by exact string
// equality, creating either on first sight. Linear scans keep insertion
// order identical to ingestion order.
func (l *Library) insert(t Track) {
	for i := range l.Artists {
		if l.Artists[i].Title != t.AlbumArtist {
			continue
		}
		for j := range l.Artists[i].Albums {
			if l.Artists[i].Albums[j].Title == t.Album {
				l.Artists[i].Albums[j].Tracks = append(l.Artists[i].Albums[j].Tracks, t)
				return
			}
		}
		l.Artists[i].Albums = append(l.Artists[i].Albums, newAlbum(t))
		return
	}
	l.Artists = append(l.Artists, Artist{
		Title:  t.AlbumArtist,
		Albums: []Album{newAlbum(t)},
	})
}

func newAlbum(t Track) Album {
	return Album{
		Title:  t.Album,
		Artist: t.AlbumArtist,
		Year:   t.Year,
		Tracks: []Track{t},
	}
}

func sortArtists(artists []Artist) {
	slices.SortStableFunc(artists, func(a, b Artist) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}

func (b *Builder) persist(ctx context.Context, snapshotFile string, lib *Library) error {
	err := try.Do(func(attempt int) (retry bool, err error) {
		attemptRemained := attempt < config.SnapshotWriteAttempts
		if attempt > 1 {
			time.Sleep(pace.PersistRetrySleep(attempt))
		}
		if errutil.IsContext(ctx) {
			return false, ctx.Err()
		}
		if err := WriteSnapshot(snapshotFile, lib); nil != err {
			b.logger.Warn().Int("attempt", attempt).Str("path", snapshotFile).Msg("Snapshot write failed.")
			return attemptRemained, err
		}
		return false, nil
	})
	if nil != err {
		if errutil.IsContext(ctx) {
			return ctx.Err()
		}
		return err
	}
	return nil
}
