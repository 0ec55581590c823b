package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/web/handlers"
)

type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{Version: handlers.Version, Go: runtime.Version()}
			return opts.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "navigator %s\n", info.Version)
				if opts.verbose {
					fmt.Fprintf(w, "  go: %s\n", info.Go)
				}
				return err
			})
		},
	}
}
