package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/tonearm/config"
	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/mathutil"
	"github.com/xeptore/tonearm/must"
)

const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

// TagProber builds Tracks from on-disk audio files: tags via the tag
// reader, duration by decoding the stream, with an ffprobe fallback when
// the decoder cannot tell the stream length.
type TagProber struct {
	logger zerolog.Logger
}

func NewTagProber(logger zerolog.Logger) *TagProber {
	return &TagProber{logger: logger}
}

func (p *TagProber) Probe(ctx context.Context, path string) (t Track, err error) {
	flawP := flaw.P{"path": path}

	f, err := openWithRetry(ctx, path)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return Track{}, flaw.From(fmt.Errorf("failed to open file: %v", err)).Append(flawP)
	}
	defer func() {
		// The stream decoder may have taken ownership of the handle and
		// closed it already.
		if closeErr := f.Close(); nil != closeErr && !errors.Is(closeErr, os.ErrClosed) {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	meta, err := tag.ReadFrom(f)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return Track{}, flaw.From(fmt.Errorf("failed to read tags: %v", err)).Append(flawP)
	}

	t = Track{
		Title:       strings.TrimSpace(meta.Title()),
		Album:       strings.TrimSpace(meta.Album()),
		AlbumArtist: strings.TrimSpace(meta.AlbumArtist()),
		Year:        meta.Year(),
		Duration:    0,
		Path:        path,
	}
	if t.Title == "" {
		base := filepath.Base(path)
		t.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = strings.TrimSpace(meta.Artist())
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = unknownArtist
	}
	if t.Album == "" {
		t.Album = unknownAlbum
	}

	if _, err := f.Seek(0, io.SeekStart); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return Track{}, flaw.From(fmt.Errorf("failed to rewind file: %v", err)).Append(flawP)
	}

	secs, decodeErr := decodedSeconds(f, filepath.Ext(path))
	if nil == decodeErr {
		t.Duration = secs
		return t, nil
	}
	p.logger.Debug().Str("path", path).Str("reason", decodeErr.Error()).Msg("Stream decode could not tell duration, falling back to ffprobe.")

	secs, ffErr := ffprobeSeconds(ctx, path)
	if nil != ffErr {
		p.logger.Debug().Str("path", path).Str("reason", ffErr.Error()).Msg("ffprobe could not tell duration, keeping zero.")
		return t, nil
	}
	t.Duration = secs
	return t, nil
}

// Decode opens a decoder for the given audio handle based on its file
// extension. On success the returned streamer owns the handle.
func Decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ExtMP3:
		return mp3.Decode(f)
	case ExtFLAC:
		return flac.Decode(f)
	case ExtOGG:
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("no decoder for extension %q", ext)
	}
}

func decodedSeconds(f *os.File, ext string) (int, error) {
	streamer, format, err := Decode(f, ext)
	if nil != err {
		return 0, err
	}
	defer streamer.Close()

	n := streamer.Len()
	if n <= 0 {
		return 0, fmt.Errorf("decoder reports unknown stream length for extension %q", ext)
	}
	d := format.SampleRate.D(n)
	return int(mathutil.CeilDiv(int64(d), int64(time.Second))), nil
}

func ffprobeSeconds(ctx context.Context, path string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, config.FFProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", path).Output()
	if nil != err {
		return 0, fmt.Errorf("ffprobe failed: %v", err)
	}

	dur := gjson.GetBytes(out, "format.duration")
	if !dur.Exists() {
		return 0, errors.New("ffprobe output has no format.duration")
	}
	secs, err := strconv.ParseFloat(dur.String(), 64)
	if nil != err {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %v", dur.String(), err)
	}
	return int(math.Ceil(secs)), nil
}

// openWithRetry opens path, retrying transient failures with a short
// exponential backoff. Scans race with files still being copied into the
// music dir; a busy file now is often readable a moment later.
func openWithRetry(ctx context.Context, path string) (*os.File, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = config.ProbeOpenRetryMaxPause
	b.MaxElapsedTime = config.ProbeOpenRetryMaxElapsed

	var f *os.File
	op := func() error {
		file, err := os.Open(path)
		if nil != err {
			if errutil.IsPermanentFS(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		f = file
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); nil != err {
		return nil, err
	}
	return f, nil
}
