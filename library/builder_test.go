package library_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tonearm/library"
)

func TestEligible(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ext  string
		want bool
	}{
		{ext: ".mp3", want: true},
		{ext: ".flac", want: true},
		{ext: ".ogg", want: true},
		{ext: ".MP3", want: false},
		{ext: ".FLAC", want: false},
		{ext: ".Ogg", want: false},
		{ext: ".wav", want: false},
		{ext: ".opus", want: false},
		{ext: ".mp3x", want: false},
		{ext: "mp3", want: false},
		{ext: "", want: false},
	}
	for _, tt := range tests {
		if got := library.Eligible(tt.ext); got != tt.want {
			t.Errorf("Eligible(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

type fakeProber struct {
	tracks map[string]library.Track
	fail   map[string]error
}

func (p *fakeProber) Probe(_ context.Context, path string) (library.Track, error) {
	base := filepath.Base(path)
	if err, ok := p.fail[base]; ok {
		return library.Track{}, err
	}
	t, ok := p.tracks[base]
	if !ok {
		return library.Track{}, fmt.Errorf("unexpected probe of %q", path)
	}
	t.Path = path
	return t, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o0644))
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()
	musicDir := t.TempDir()
	snapshotFile := filepath.Join(t.TempDir(), "library.db")

	for _, name := range []string{
		"a.mp3", "b.flac", "broken.mp3", "c.ogg", "h.ogg",
		"cover.jpg", "d.MP3", "e.wav",
		filepath.Join("sub", "f.mp3"),
	} {
		touch(t, filepath.Join(musicDir, name))
	}

	prober := &fakeProber{
		tracks: map[string]library.Track{
			"a.mp3":  {Title: "a-title", Album: "B1", AlbumArtist: "beta", Year: 2010, Duration: 100},
			"b.flac": {Title: "b-title", Album: "A1", AlbumArtist: "Alpha", Year: 2001, Duration: 200},
			"c.ogg":  {Title: "c-title", Album: "G1", AlbumArtist: "gamma", Year: 2015, Duration: 300},
			"h.ogg":  {Title: "h-title", Album: "G1", AlbumArtist: "Gamma", Year: 2016, Duration: 50},
			"f.mp3":  {Title: "f-title", Album: "A1", AlbumArtist: "Alpha", Year: 2001, Duration: 400},
		},
		fail: map[string]error{
			"broken.mp3": errors.New("no header"),
		},
	}

	builder := library.NewBuilder(zerolog.Nop(), prober)
	lib, report, err := builder.Build(context.Background(), musicDir, snapshotFile)
	require.NoError(t, err)

	// Only exactly-lowercase .mp3/.flac/.ogg files count as candidates.
	assert.Equal(t, 6, report.Scanned)
	assert.Equal(t, 5, report.Ingested)
	assert.Equal(t, 1, report.SkippedFiles)
	assert.Zero(t, report.SkippedDirs)

	// Artists sort case-insensitively; equal keys keep ingestion order.
	require.Len(t, lib.Artists, 4)
	names := make([]string, 0, len(lib.Artists))
	for _, a := range lib.Artists {
		names = append(names, a.Title)
	}
	assert.Equal(t, []string{"Alpha", "beta", "gamma", "Gamma"}, names)

	// Grouping keys are exact strings: "gamma" and "Gamma" stay apart.
	alpha := lib.Artists[0]
	require.Len(t, alpha.Albums, 1)
	assert.Equal(t, "A1", alpha.Albums[0].Title)
	require.Len(t, alpha.Albums[0].Tracks, 2)
	assert.Equal(t, "b-title", alpha.Albums[0].Tracks[0].Title)
	assert.Equal(t, "f-title", alpha.Albums[0].Tracks[1].Title)

	// Track paths point back into the scanned tree.
	assert.Equal(t, filepath.Join(musicDir, "b.flac"), alpha.Albums[0].Tracks[0].Path)
	assert.Equal(t, filepath.Join(musicDir, "sub", "f.mp3"), alpha.Albums[0].Tracks[1].Path)

	// The snapshot persisted during the build loads back identical.
	loaded, err := library.ReadSnapshot(snapshotFile)
	require.NoError(t, err)
	assert.Equal(t, lib, loaded)
}

func TestBuilderBuildMissingRoot(t *testing.T) {
	t.Parallel()
	builder := library.NewBuilder(zerolog.Nop(), &fakeProber{tracks: nil, fail: nil})
	_, _, err := builder.Build(context.Background(), filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "library.db"))
	require.Error(t, err)
}

func TestBuilderBuildCanceled(t *testing.T) {
	t.Parallel()
	musicDir := t.TempDir()
	touch(t, filepath.Join(musicDir, "a.mp3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := library.NewBuilder(zerolog.Nop(), &fakeProber{tracks: nil, fail: nil})
	_, _, err := builder.Build(ctx, musicDir, filepath.Join(t.TempDir(), "library.db"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuilderBuildEmptyDir(t *testing.T) {
	t.Parallel()
	snapshotFile := filepath.Join(t.TempDir(), "library.db")

	builder := library.NewBuilder(zerolog.Nop(), &fakeProber{tracks: nil, fail: nil})
	lib, report, err := builder.Build(context.Background(), t.TempDir(), snapshotFile)
	require.NoError(t, err)

	assert.Empty(t, lib.Artists)
	assert.Zero(t, report.Scanned)
	assert.Zero(t, report.Ingested)

	// Even an empty library persists a loadable snapshot.
	loaded, err := library.ReadSnapshot(snapshotFile)
	require.NoError(t, err)
	assert.Empty(t, loaded.Artists)
}
