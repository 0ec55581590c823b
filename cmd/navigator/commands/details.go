package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/pkg/types"
)

func newDetailsCmd(opts *options) *cobra.Command {
	var inferred bool

	cmd := &cobra.Command{
		Use:   "details <iri>",
		Short: "Show the properties of one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, nav, err := opts.navigator(cmd)
			if err != nil {
				return err
			}
			defer nav.Cache().Close()

			details, err := nav.Details(cmd.Context(), args[0], inferred)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), details, func(w io.Writer) error {
				return writeDetails(w, details)
			})
		},
	}
	cmd.Flags().BoolVar(&inferred, "inferred", false, "read from the inferred graph")
	return cmd
}

func writeDetails(w io.Writer, d *types.NodeDetails) error {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(d.Label), dimStyle.Render("<"+d.ID+">"))
	if len(d.Properties) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("  (no properties)"))
		return err
	}
	for _, p := range d.Properties {
		arrow := "→"
		if p.Direction == types.DirectionIncoming {
			arrow = "←"
		}
		if _, err := fmt.Fprintf(w, "  %s %s %s\n", p.PredicateLabel, arrow, p.ObjectLabel); err != nil {
			return err
		}
	}
	return nil
}
