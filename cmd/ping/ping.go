package ping

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"
	"github.com/tonearm/tonearm/cmd/common"
	"github.com/tonearm/tonearm/internal/config"
	"github.com/tonearm/tonearm/internal/subsonic"
)

type Params struct {
	Timeout float64 `short:"W" optional:"true" help:"Time to wait for a response, in seconds." default:"10"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "ping",
		Short:       "Check connectivity and credentials against the configured server",
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
		fmt.Fprintf(stderr, "ping: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ping: %v\n", err)
		return 1
	}

	client := subsonic.NewClient(cfg.Server.URL, cfg.Server.Username, cfg.Server.Password)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(params.Timeout*float64(time.Second)))
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(stderr, "ping: %s: %v\n", cfg.Server.URL, err)
		return 1
	}

	fmt.Fprintf(stdout, "%s: ok (%.0f ms)\n", cfg.Server.URL, float64(time.Since(start).Microseconds())/1000.0)
	return 0
}
