package library_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tonearm/library"
)

func sampleLibrary() *library.Library {
	return &library.Library{
		Artists: []library.Artist{
			{
				Title: "Alpha",
				Albums: []library.Album{
					{
						Title:  "Dawn Chorus",
						Artist: "Alpha",
						Year:   2001,
						Tracks: []library.Track{
							{Title: "First Light", Album: "Dawn Chorus", AlbumArtist: "Alpha", Year: 2001, Duration: 184, Path: "/music/alpha/dawn-chorus/01.flac"},
							{Title: "Daybreak", Album: "Dawn Chorus", AlbumArtist: "Alpha", Year: 2001, Duration: 239, Path: "/music/alpha/dawn-chorus/02.flac"},
						},
					},
				},
			},
			{
				Title: "beta",
				Albums: []library.Album{
					{
						Title:  "Night Shift",
						Artist: "beta",
						Year:   2014,
						Tracks: []library.Track{
							{Title: "Graveyard", Album: "Night Shift", AlbumArtist: "beta", Year: 2014, Duration: 321, Path: "/music/beta/night-shift/01.mp3"},
						},
					},
				},
			},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state", "library.db")

	lib := sampleLibrary()
	require.NoError(t, library.WriteSnapshot(path, lib))

	loaded, err := library.ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, lib, loaded)
}

func TestSnapshotOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "library.db")

	require.NoError(t, library.WriteSnapshot(path, sampleLibrary()))

	smaller := &library.Library{Artists: sampleLibrary().Artists[:1]}
	require.NoError(t, library.WriteSnapshot(path, smaller))

	loaded, err := library.ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, smaller, loaded)
}

// writeValidSnapshot persists a sample library and returns its path and raw
// bytes for corruption.
func writeValidSnapshot(t *testing.T) (string, []byte) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, library.WriteSnapshot(path, sampleLibrary()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return path, data
}

func TestSnapshotReadFailClosed(t *testing.T) {
	t.Parallel()

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		_, err := library.ReadSnapshot(filepath.Join(t.TempDir(), "absent.db"))
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		t.Parallel()
		path, data := writeValidSnapshot(t)
		require.NoError(t, os.WriteFile(path, data[:4], 0o0644))
		_, err := library.ReadSnapshot(path)
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})

	t.Run("ForeignHeader", func(t *testing.T) {
		t.Parallel()
		path, data := writeValidSnapshot(t)
		copy(data[:8], "NOTATONE")
		require.NoError(t, os.WriteFile(path, data, 0o0644))
		_, err := library.ReadSnapshot(path)
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})

	t.Run("TruncatedVersionTag", func(t *testing.T) {
		t.Parallel()
		path, data := writeValidSnapshot(t)
		require.NoError(t, os.WriteFile(path, data[:10], 0o0644))
		_, err := library.ReadSnapshot(path)
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})

	t.Run("FutureVersion", func(t *testing.T) {
		t.Parallel()
		path, data := writeValidSnapshot(t)
		binary.BigEndian.PutUint32(data[8:12], 99)
		require.NoError(t, os.WriteFile(path, data, 0o0644))
		_, err := library.ReadSnapshot(path)
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})

	t.Run("CorruptBody", func(t *testing.T) {
		t.Parallel()
		path, data := writeValidSnapshot(t)
		corrupted := append([]byte(nil), data[:12]...)
		corrupted = append(corrupted, []byte("definitely not a record stream")...)
		require.NoError(t, os.WriteFile(path, corrupted, 0o0644))
		_, err := library.ReadSnapshot(path)
		require.ErrorIs(t, err, library.ErrSnapshotRebuildRequired)
	})
}
