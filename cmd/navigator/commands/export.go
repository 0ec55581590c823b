package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/internal/app"
	"github.com/ritualgrammar/navigator/internal/storage"
)

func newExportCmd(opts *options) *cobra.Command {
	var inferred bool

	cmd := &cobra.Command{
		Use:   "export <destination>",
		Short: "Write the asserted or inferred graph as N-Triples",
		Long: `Write the asserted or inferred graph as N-Triples to a local path,
a file:// URL or an s3:// object. Exporting the inferred graph lets a
SPARQL endpoint serve the same closure the tree views are built from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]
			cfg, nav, err := opts.navigator(cmd)
			if err != nil {
				return err
			}
			defer nav.Cache().Close()

			kind := storage.KindFor(inferred)
			snap, err := nav.Cache().Get(cmd.Context(), kind)
			if err != nil {
				return err
			}
			triples, err := snap.Store.Triples(cmd.Context())
			if err != nil {
				return fmt.Errorf("read %s graph: %w", kind, err)
			}

			if err := app.NewLoader(cfg, dest).Save(cmd.Context(), dest, triples); err != nil {
				return err
			}
			slog.Info("graph exported", "kind", string(kind), "triples", len(triples), "destination", dest)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %d %s triples to %s\n", len(triples), kind, dest)
			return err
		},
	}
	cmd.Flags().BoolVar(&inferred, "inferred", false, "export the inferred graph")
	return cmd
}
