package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tonearm/tonearm/cmd/common"
	"github.com/tonearm/tonearm/internal/config"
	"github.com/tonearm/tonearm/internal/subsonic"
)

type Params struct {
	Query string `pos:"true" required:"true" help:"Search query."`
	Count int    `short:"n" optional:"true" help:"Max results per category." default:"20"`
	Songs bool   `short:"s" optional:"true" help:"Show songs only."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "search",
		Short:       "Search artists, albums and songs on the server",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			exitCode := Run(params, os.Stdout, os.Stderr)
			os.Exit(exitCode)
		},
	}.ToCobra()
}

func Run(params *Params, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "search: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "search: %v\n", err)
		return 1
	}

	client := subsonic.NewClient(cfg.Server.URL, cfg.Server.Username, cfg.Server.Password)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.Search(ctx, params.Query, params.Count)
	if err != nil {
		fmt.Fprintf(stderr, "search: %v\n", err)
		return 1
	}

	if !params.Songs && len(result.Artist) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(stdout)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Artists")
		t.AppendHeader(table.Row{"ID", "Name", "Albums"})
		for _, a := range result.Artist {
			t.AppendRow(table.Row{a.ID, a.Name, a.AlbumCount})
		}
		t.Render()
	}

	if !params.Songs && len(result.Album) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(stdout)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Albums")
		t.AppendHeader(table.Row{"ID", "Name", "Artist", "Year", "Songs"})
		for _, a := range result.Album {
			t.AppendRow(table.Row{a.ID, a.Name, a.Artist, a.Year, a.SongCount})
		}
		t.Render()
	}

	if len(result.Song) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(stdout)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Songs")
		t.AppendHeader(table.Row{"ID", "Title", "Artist", "Album", "Length"})
		for _, s := range result.Song {
			d := time.Duration(s.Duration) * time.Second
			t.AppendRow(table.Row{s.ID, s.Title, s.Artist, s.Album, fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)})
		}
		t.Render()
	}

	if len(result.Artist)+len(result.Album)+len(result.Song) == 0 {
		fmt.Fprintf(stdout, "No results for %q\n", params.Query)
	}
	return 0
}
