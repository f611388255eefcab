package play

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tonearm/tonearm/cmd/common"
	"github.com/tonearm/tonearm/internal/config"
	"github.com/tonearm/tonearm/internal/engine"
	"github.com/tonearm/tonearm/internal/engine/audio"
	"github.com/tonearm/tonearm/internal/engine/fetch"
	"github.com/tonearm/tonearm/internal/subsonic"
	"github.com/tonearm/tonearm/internal/ui"
)

type Params struct {
	Album    string `short:"a" optional:"true" help:"Play an album by id."`
	Playlist string `short:"p" optional:"true" help:"Play a playlist by id."`
	Random   int    `short:"r" optional:"true" help:"Queue this many random tracks when no album or playlist is given." default:"50"`
	Verbose  bool   `short:"v" optional:"true" help:"Log at debug level."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Open the player TUI",
		Long:        "Connects to the configured Subsonic server, fills the queue and opens the interactive player.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "play: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func run(params *Params) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogging(params.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	client := subsonic.NewClient(cfg.Server.URL, cfg.Server.Username, cfg.Server.Password)
	client.LogServer()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach server: %w", err)
	}

	tracks, err := loadTracks(ctx, client, params)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("nothing to play")
	}

	catalog := &serverCatalog{client: client}
	catalog.scrobble.Store(cfg.Playback.Scrobble)

	var notifyEnabled atomic.Bool
	notifyEnabled.Store(cfg.Playback.Notifications)

	eng := engine.New(engine.Options{
		Output:  audio.NewSpeaker(),
		Fetcher: fetch.NewClient(),
		Catalog: catalog,
		Volume:  cfg.Playback.Volume,
		Notify: func(t engine.Track) {
			if !notifyEnabled.Load() {
				return
			}
			if err := beeep.Notify("tonearm", t.Title+" — "+t.Artist, ""); err != nil {
				slog.Debug("notification failed", "error", err)
			}
		},
	})
	defer eng.Shutdown()

	eng.SetTracks(tracks)
	if cfg.Playback.Shuffle {
		eng.ToggleShuffle()
	}
	eng.PlayIndex(0)

	if watcher, err := config.NewWatcher(func(c *config.Config) {
		catalog.scrobble.Store(c.Playback.Scrobble)
		notifyEnabled.Store(c.Playback.Notifications)
	}); err == nil {
		go watcher.Start()
		defer watcher.Stop()
	} else {
		slog.Warn("config watching disabled", "error", err)
	}

	p := tea.NewProgram(ui.NewModel(eng, catalog), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// setupLogging redirects slog to a file; the TUI owns the terminal.
func setupLogging(verbose bool) (func(), error) {
	dir := common.CacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "tonearm.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() { f.Close() }, nil
}

func loadTracks(ctx context.Context, client *subsonic.Client, params *Params) ([]engine.Track, error) {
	var songs []subsonic.Child
	switch {
	case params.Album != "":
		album, err := client.GetAlbum(ctx, params.Album)
		if err != nil {
			return nil, err
		}
		songs = album.Song
	case params.Playlist != "":
		pl, err := client.GetPlaylist(ctx, params.Playlist)
		if err != nil {
			return nil, err
		}
		songs = pl.Entry
	default:
		var err error
		songs, err = client.GetRandomSongs(ctx, params.Random)
		if err != nil {
			return nil, err
		}
	}

	return lo.Map(songs, func(c subsonic.Child, _ int) engine.Track {
		return trackFromChild(client, c)
	}), nil
}

func trackFromChild(client *subsonic.Client, c subsonic.Child) engine.Track {
	return engine.Track{
		ID:        c.ID,
		Title:     c.Title,
		Artist:    c.Artist,
		Album:     c.Album,
		Duration:  time.Duration(c.Duration) * time.Second,
		Size:      c.Size,
		BitRate:   c.BitRate,
		GainDB:    c.GainDB(),
		CoverArt:  c.CoverArt,
		Starred:   c.Starred != "",
		StreamURL: client.StreamURL(c.ID),
	}
}

// serverCatalog adapts the Subsonic client to the engine's catalog interface
// and the UI's starrer, with a live scrobble on/off switch.
type serverCatalog struct {
	client   *subsonic.Client
	scrobble atomic.Bool
}

func (c *serverCatalog) NowPlaying(ctx context.Context, trackID string) error {
	if !c.scrobble.Load() {
		return nil
	}
	return c.client.Scrobble(ctx, trackID, false)
}

func (c *serverCatalog) Scrobble(ctx context.Context, trackID string) error {
	if !c.scrobble.Load() {
		return nil
	}
	return c.client.Scrobble(ctx, trackID, true)
}

func (c *serverCatalog) Lyrics(ctx context.Context, trackID string) ([]engine.Cue, error) {
	doc, err := c.client.Lyrics(ctx, trackID)
	if err != nil || doc == nil {
		return nil, err
	}
	if !doc.Synced {
		// Unsynced lyrics have no timing; show nothing rather than a wall
		// of text scrolling at the wrong pace.
		return nil, nil
	}
	cues := make([]engine.Cue, 0, len(doc.Line))
	for _, line := range doc.Line {
		start := time.Duration(line.Start+doc.Offset) * time.Millisecond
		if start < 0 {
			start = 0
		}
		cues = append(cues, engine.Cue{Start: start, Text: line.Value})
	}
	return cues, nil
}

func (c *serverCatalog) StarTrack(trackID string, starred bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		var err error
		if starred {
			err = c.client.Star(ctx, trackID)
		} else {
			err = c.client.Unstar(ctx, trackID)
		}
		if err != nil {
			slog.Warn("star update failed", "track", trackID, "error", err)
		}
	}()
}
