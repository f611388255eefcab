package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"
	"github.com/tonearm/tonearm/cmd/ping"
	"github.com/tonearm/tonearm/cmd/play"
	"github.com/tonearm/tonearm/cmd/search"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "tonearm",
		Short:   "A terminal player for Subsonic-compatible music servers",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			play.Cmd(),
			ping.Cmd(),
			search.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
