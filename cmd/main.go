package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/tonearm/config"
	"github.com/xeptore/tonearm/constant"
	"github.com/xeptore/tonearm/ctxutil"
	"github.com/xeptore/tonearm/engine"
	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/library"
	"github.com/xeptore/tonearm/log"
	"github.com/xeptore/tonearm/player"
	"github.com/xeptore/tonearm/search"
)

const (
	flagConfigFilePath = "config"
	defaultConfigFile  = "config.yml"
)

func main() {
	logger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	defer func() {
		if r := recover(); nil != r {
			logger.Fatal().Func(log.Panic(r)).Msg("Application panicked")
		}
	}()

	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "tonearm",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Local music library and playback core",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:    "scan",
				Aliases: []string{"s"},
				Usage:   "Build the library from the music directory and persist a snapshot",
				Action:  runScan,
				Flags:   []cli.Flag{configFlag()},
			},
			//nolint:exhaustruct
			{
				Name:   "stats",
				Usage:  "Print library statistics from the snapshot",
				Action: runStats,
				Flags:  []cli.Flag{configFlag()},
			},
			//nolint:exhaustruct
			{
				Name:      "search",
				Usage:     "Search the library with a scoped query",
				ArgsUsage: "<artist|album|title> <term>",
				Action:    runSearch,
				Flags:     []cli.Flag{configFlag()},
			},
			//nolint:exhaustruct
			{
				Name:      "play",
				Aliases:   []string{"p"},
				Usage:     "Play the best match of a scoped query until the queue drains",
				ArgsUsage: "<album|title> <term>",
				Action:    runPlay,
				Flags:     []cli.Flag{configFlag()},
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

func configFlag() cli.Flag {
	//nolint:exhaustruct
	return &cli.StringFlag{
		Name:     flagConfigFilePath,
		Aliases:  []string{"c"},
		Usage:    "Config file path",
		Required: false,
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	var (
		cfgEnv      = os.Getenv("TONEARM_CONFIG")
		cfgFilePath = cliCtx.String(flagConfigFilePath)
	)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	default:
		logger.Debug().Str("config_file_path", defaultConfigFile).Msg("Loading config from default file")
		cfg, err := config.FromFile(defaultConfigFile)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := log.NewPretty(os.Stdout)
	if cfg.Log.Format == "packed" {
		logger = log.NewPacked(os.Stdout)
	}
	if cfg.Log.Level == "" {
		return logger.Level(zerolog.InfoLevel)
	}
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if nil != err {
		return logger.Level(zerolog.InfoLevel)
	}
	return logger.Level(lvl)
}

func loadSnapshot(cfg *config.Config) (*library.Library, error) {
	lib, err := library.ReadSnapshot(cfg.Library.SnapshotFile)
	if nil != err {
		if errors.Is(err, library.ErrSnapshotRebuildRequired) {
			return nil, fmt.Errorf("%v. run the scan command to rebuild it", err)
		}
		return nil, err
	}
	return lib, nil
}

func runScan(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootLogger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	cfg, err := loadConfig(cliCtx, bootLogger)
	if nil != err {
		return err
	}
	logger := newLogger(cfg)

	if info, err := os.Stat(cfg.Library.MusicDir); nil != err {
		return fmt.Errorf("failed to stat music dir: %v", err)
	} else if !info.IsDir() {
		return fmt.Errorf("music dir %q is not a directory", cfg.Library.MusicDir)
	}

	// Interruption still lets an in-flight snapshot write land before the
	// build context goes dark.
	buildCtx, cancelBuild := ctxutil.WithDelayedTimeout(ctx, config.ScanShutdownGrace)
	defer cancelBuild()

	builder := library.NewBuilder(logger, library.NewTagProber(logger))
	lib, report, err := builder.Build(buildCtx, cfg.Library.MusicDir, cfg.Library.SnapshotFile)
	if nil != err {
		return err
	}
	logger.Info().Func(report.Log).Str("snapshot_file", cfg.Library.SnapshotFile).Msg("Library scan finished.")

	return printJSON(lib.Stats())
}

func runStats(cliCtx *cli.Context) error {
	bootLogger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	cfg, err := loadConfig(cliCtx, bootLogger)
	if nil != err {
		return err
	}

	lib, err := loadSnapshot(cfg)
	if nil != err {
		return err
	}

	return printJSON(lib.Stats())
}

func runSearch(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootLogger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	cfg, err := loadConfig(cliCtx, bootLogger)
	if nil != err {
		return err
	}
	logger := newLogger(cfg)

	raw := strings.Join(cliCtx.Args().Slice(), " ")
	q, ok := search.ParseQuery(raw)
	if !ok {
		return fmt.Errorf("query %q must start with artist, album, or title, followed by a term", raw)
	}

	lib, err := loadSnapshot(cfg)
	if nil != err {
		return err
	}

	group, err := search.Build(ctx, lib)
	if nil != err {
		return err
	}

	res := group.Search(q)
	if err := printHits(lib, res); nil != err {
		return err
	}
	logger.Info().Str("scope", string(res.Scope)).Str("term", q.Term).Int("hits", res.Len()).Msg("Search finished.")
	return nil
}

var errPlaybackDrained = errors.New("playback drained")

func runPlay(cliCtx *cli.Context) (err error) {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootLogger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	cfg, err := loadConfig(cliCtx, bootLogger)
	if nil != err {
		return err
	}
	logger := newLogger(cfg)

	raw := strings.Join(cliCtx.Args().Slice(), " ")
	q, ok := search.ParseQuery(raw)
	if !ok {
		return fmt.Errorf("query %q must start with album or title, followed by a term", raw)
	}
	if q.Scope == search.ScopeArtist {
		return errors.New("artist queries are searchable but not directly playable. use album or title")
	}

	lib, err := loadSnapshot(cfg)
	if nil != err {
		return err
	}

	group, err := search.Build(ctx, lib)
	if nil != err {
		return err
	}

	sink := engine.NewBeepSink(logger.With().Str("module", "sink").Logger())
	defer func() {
		if closeErr := sink.Close(); nil != closeErr {
			logger.Error().Func(log.Flaw(closeErr)).Msg("Failed to close audio sink")
		}
	}()

	eng := engine.New(logger.With().Str("module", "engine").Logger(), sink)
	pl := player.New(logger.With().Str("module", "player").Logger(), lib, eng)

	switch q.Scope {
	case search.ScopeTitle:
		coord, ok := search.ExactTitles(lib)[q.Term]
		if !ok {
			res := group.Search(q)
			if len(res.Tracks) == 0 {
				return fmt.Errorf("no track title matches %q", q.Term)
			}
			coord = res.Tracks[0]
		}
		t, ok := lib.TrackAt(coord.Artist, coord.Album, coord.Track)
		if !ok {
			panic(errutil.UnknownError(fmt.Errorf("track coordinate %+v is out of library range", coord)))
		}
		pl.PlayTrack(t)
	case search.ScopeAlbum:
		res := group.Search(q)
		if len(res.Albums) == 0 {
			return fmt.Errorf("no album matches %q", q.Term)
		}
		if !pl.PlayAlbum(res.Albums[0]) {
			return fmt.Errorf("best album match for %q has no tracks", q.Term)
		}
	default:
		panic(errutil.UnknownError(fmt.Errorf("unexpected query scope %q", q.Scope)))
	}

	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(func() error { return eng.Run(wgCtx) })
	wg.Go(func() error { return pl.Run(wgCtx) })
	wg.Go(func() error {
		ticker := time.NewTicker(config.DrainPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-wgCtx.Done():
				return wgCtx.Err()
			case <-ticker.C:
				if pl.Idle() {
					return errPlaybackDrained
				}
			}
		}
	})

	err = wg.Wait()
	if errors.Is(err, errPlaybackDrained) {
		logger.Info().Msg("Queue drained. Exiting.")
		return nil
	}
	return err
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if nil != err {
		return fmt.Errorf("failed to marshal output: %v", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func printJSONLine(v any) error {
	data, err := json.Marshal(v)
	if nil != err {
		return fmt.Errorf("failed to marshal output line: %v", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

type artistHit struct {
	Artist string `json:"artist"`
	Albums int    `json:"albums"`
}

type albumHit struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Year   int    `json:"year"`
	Tracks int    `json:"tracks"`
}

type trackHit struct {
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Title    string `json:"title"`
	Duration int    `json:"duration_seconds"`
}

func printHits(lib *library.Library, res search.Results) error {
	switch res.Scope {
	case search.ScopeArtist:
		for _, c := range res.Artists {
			artist, ok := lib.ArtistAt(c.Artist)
			if !ok {
				continue
			}
			if err := printJSONLine(artistHit{Artist: artist.Title, Albums: len(artist.Albums)}); nil != err {
				return err
			}
		}
	case search.ScopeAlbum:
		for _, c := range res.Albums {
			album, ok := lib.AlbumAt(c.Artist, c.Album)
			if !ok {
				continue
			}
			if err := printJSONLine(albumHit{Artist: album.Artist, Album: album.Title, Year: album.Year, Tracks: len(album.Tracks)}); nil != err {
				return err
			}
		}
	case search.ScopeTitle:
		for _, c := range res.Tracks {
			t, ok := lib.TrackAt(c.Artist, c.Album, c.Track)
			if !ok {
				continue
			}
			if err := printJSONLine(trackHit{Artist: t.AlbumArtist, Album: t.Album, Title: t.Title, Duration: t.Duration}); nil != err {
				return err
			}
		}
	}
	return nil
}
