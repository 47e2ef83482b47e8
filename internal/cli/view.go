package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/engine"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	engine   string
	fancy    bool
	freeMove bool
	noCache  bool
}

// viewCommand creates the interactive terminal viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	opts := viewOpts{}

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "View a DOT diagram interactively in the terminal",
		Long: `View opens an interactive diagram viewer in the terminal.

Keys:
  f            toggle fancy (force-directed) mode
  space        toggle free-move (fancy mode only)
  tab / n      select next node    N / shift+tab  previous
  esc          clear selection
  + / -        zoom in / out (about the selected node when one is set)
  arrows, hjkl pan
  r            reset view
  e            export PNG next to the input file
  q            quit

Mouse clicks select nodes, dragging in fancy mode moves them, and the wheel
zooms while a node is selected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: dot (default), neato, fdp, ...")
	cmd.Flags().BoolVar(&opts.fancy, "fancy", false, "start in force-directed mode")
	cmd.Flags().BoolVar(&opts.freeMove, "free-move", false, "start with free-move enabled")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, opts *viewOpts) error {
	logger := loggerFromContext(ctx)

	dot, err := readInput(input)
	if err != nil {
		return err
	}

	cfg := c.loadConfig()
	engineName := opts.engine
	if engineName == "" {
		engineName = cfg.Viewer.Engine
	}

	cch := c.newCache(ctx, cfg, opts.noCache)
	defer cch.Close()

	m := newViewerModel(input)
	e := engine.New(engine.Options{
		LayoutEngine: engineName,
		Fancy:        opts.fancy || cfg.Viewer.Fancy,
		FreeMove:     opts.freeMove || cfg.Viewer.FreeMove,
		Cache:        cch,
		Logger:       logger,
		Events:       m,
	})
	defer e.Close()
	m.eng = e

	if err := e.LoadDescription(ctx, string(dot)); err != nil {
		return err
	}
	if e.Graph().Empty() {
		return fmt.Errorf("diagram is empty, nothing to view")
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}
