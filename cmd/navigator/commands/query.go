package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/pkg/types"
)

func newQueryCmd(opts *options) *cobra.Command {
	var (
		inferred bool
		file     string
	)

	cmd := &cobra.Command{
		Use:   "query [sparql]",
		Short: "Run a SPARQL query against the configured endpoint",
		Long: `Run a SPARQL query against the endpoint configured for the asserted
or inferred graph. The query is taken from the argument, from --file, or
from stdin when the argument is "-". Without any of them the default
query is run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			_, nav, err := opts.navigator(cmd)
			if err != nil {
				return err
			}
			defer nav.Cache().Close()

			result := nav.Query(cmd.Context(), query, inferred)
			if result.Failed() {
				return errors.New(result.Error)
			}
			return opts.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return writeResult(w, result)
			})
		},
	}
	cmd.Flags().BoolVar(&inferred, "inferred", false, "query the inferred graph")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the query from a file")
	return cmd
}

func readQuery(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return engine.DefaultQuery, nil
	}
}

// writeResult prints a result table with one column per variable.
func writeResult(w io.Writer, r *types.QueryResult) error {
	if r.Message != "" {
		_, err := fmt.Fprintln(w, noticeStyle.Render(r.Message))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.Vars, "\t"))
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if c != nil {
				cells[i] = c.Label
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d row(s)", len(r.Rows))))
	return err
}
