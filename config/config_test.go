package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tonearm/config"
)

const validYAML = `
library:
  music_dir: /srv/music
  snapshot_file: /var/lib/tonearm/library.db
log:
  level: debug
  format: packed
`

func TestFromString(t *testing.T) {
	t.Parallel()
	cfg, err := config.FromString(validYAML)
	require.NoError(t, err)
	assert.Equal(t, "/srv/music", cfg.Library.MusicDir)
	assert.Equal(t, "/var/lib/tonearm/library.db", cfg.Library.SnapshotFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "packed", cfg.Log.Format)
}

func TestFromStringValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "MissingMusicDir",
			yaml:    "library:\n  snapshot_file: /tmp/x.db\n",
			wantErr: "music dir is empty",
		},
		{
			name:    "MissingSnapshotFile",
			yaml:    "library:\n  music_dir: /srv/music\n",
			wantErr: "snapshot file is empty",
		},
		{
			name:    "UnknownLogLevel",
			yaml:    "library:\n  music_dir: /srv/music\n  snapshot_file: /tmp/x.db\nlog:\n  level: loud\n",
			wantErr: "log level",
		},
		{
			name:    "UnknownLogFormat",
			yaml:    "library:\n  music_dir: /srv/music\n  snapshot_file: /tmp/x.db\nlog:\n  format: rainbow\n",
			wantErr: "log format",
		},
		{
			name:    "Garbage",
			yaml:    "library: [not, a, mapping",
			wantErr: "unmarshal",
		},
		{
			name:    "Empty",
			yaml:    "",
			wantErr: "music dir is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.FromString(tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromStringLevelOptional(t *testing.T) {
	t.Parallel()
	cfg, err := config.FromString("library:\n  music_dir: /srv/music\n  snapshot_file: /tmp/x.db\n")
	require.NoError(t, err)
	assert.Empty(t, cfg.Log.Level)
	assert.Empty(t, cfg.Log.Format)
}

func TestFromStringExpandsHome(t *testing.T) {
	t.Parallel()
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := config.FromString("library:\n  music_dir: ~/Music\n  snapshot_file: ~/.local/share/tonearm/library.db\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Music"), cfg.Library.MusicDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "tonearm", "library.db"), cfg.Library.SnapshotFile)
}

func TestFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o0644))

	cfg, err := config.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/music", cfg.Library.MusicDir)

	_, err = config.FromFile(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
