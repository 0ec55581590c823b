package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/pkg/types"
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	eventStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#d7875f"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b"))
)

func newTreeCmd(opts *options) *cobra.Command {
	var (
		inferred bool
		showIDs  bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the part-whole hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, nav, err := opts.navigator(cmd)
			if err != nil {
				return err
			}
			defer nav.Cache().Close()

			view, err := nav.NavigationTree(cmd.Context(), inferred)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
				return writeTreeView(w, view, showIDs)
			})
		},
	}
	cmd.Flags().BoolVar(&inferred, "inferred", false, "include inferred relations")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "print node IRIs next to labels")
	return cmd
}

func newEventsCmd(opts *options) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print events under their type concepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, nav, err := opts.navigator(cmd)
			if err != nil {
				return err
			}
			defer nav.Cache().Close()

			view, err := nav.EventTree(cmd.Context())
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
				return writeTreeView(w, view, showIDs)
			})
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "print node IRIs next to labels")
	return cmd
}

// writeTreeView renders a forest with box-drawing guides.
func writeTreeView(w io.Writer, view *engine.TreeView, showIDs bool) error {
	if view.Notice != "" {
		fmt.Fprintln(w, noticeStyle.Render(view.Notice))
	}
	if len(view.Nodes) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("(empty)"))
		return err
	}
	for _, root := range view.Nodes {
		if _, err := fmt.Fprintln(w, nodeLine(root, showIDs)); err != nil {
			return err
		}
		if err := writeChildren(w, root.Children, "", showIDs); err != nil {
			return err
		}
	}
	return nil
}

func writeChildren(w io.Writer, children []types.TreeNode, prefix string, showIDs bool) error {
	for i, child := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		if _, err := fmt.Fprintln(w, dimStyle.Render(prefix+branch)+nodeLine(child, showIDs)); err != nil {
			return err
		}
		if err := writeChildren(w, child.Children, prefix+indent, showIDs); err != nil {
			return err
		}
	}
	return nil
}

func nodeLine(n types.TreeNode, showIDs bool) string {
	line := labelStyle.Render(n.Label)
	if n.IsEvent {
		line = eventStyle.Render(n.Label)
	}
	if showIDs {
		line += " " + dimStyle.Render("<"+n.ID+">")
	}
	return line
}
