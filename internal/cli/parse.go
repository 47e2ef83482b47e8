package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/engine"
	"github.com/matzehuels/graphscope/pkg/graphio"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output  string // output file path; empty means stdout
	engine  string // layout algorithm name
	noCache bool   // bypass the layout cache
}

// parseCommand creates the parse command.
//
// Parse lays out the DOT input and emits the derived graph model as JSON:
// node identities, positions, shape geometry, and classified edge colors.
// This is the machine-readable surface for list/search/inspector tooling.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a DOT diagram into a graph model (JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: dot (default), neato, fdp, ...")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, input string, opts *parseOpts) error {
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

	e := engine.New(engine.Options{
		LayoutEngine: engineName,
		Cache:        cch,
		Logger:       logger,
	})
	defer e.Close()

	p := newProgress(logger)
	if err := e.LoadDescription(ctx, string(dot)); err != nil {
		return err
	}
	g := e.Graph()
	p.done(fmt.Sprintf("Parsed %d nodes, %d edges", len(g.Nodes), len(g.Edges)))

	if opts.output == "" {
		return graphio.WriteJSON(g, os.Stdout)
	}
	if err := graphio.ExportJSON(g, opts.output); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}
