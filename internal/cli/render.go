package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/engine"
	"github.com/matzehuels/graphscope/pkg/export"
	"github.com/matzehuels/graphscope/pkg/graphio"
)

// Output formats supported by the render command.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatPNG: true, formatJSON: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "svg", "png", "json"
	engine   string   // layout algorithm name
	fancy    bool     // use settled force-directed geometry
	freeMove bool     // relax anchoring before settling (implies fancy)
	noCache  bool     // bypass the layout cache
}

// renderCommand creates the render command for one-shot artifact generation.
//
// The command runs the full pipeline headlessly: lay out the DOT input,
// parse it, mount a scene (optionally settling the force simulation), and
// write the requested artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a DOT diagram to SVG, PNG, or JSON",
		Long: `Render lays out a Graphviz DOT file and writes the result.

With --fancy the force simulation is run to rest first, so the output shows
the compacted organic geometry instead of the native layout. Use "-" to read
DOT text from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: dot (default), neato, fdp, ...")
	cmd.Flags().BoolVar(&opts.fancy, "fancy", false, "render settled force-directed geometry")
	cmd.Flags().BoolVar(&opts.freeMove, "free-move", false, "relax anchoring before settling (implies --fancy)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'json')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output has a
// format extension (.svg, .png, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "graph"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the DOT input through the pipeline and writes artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

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

	fancy := opts.fancy || opts.freeMove
	e := engine.New(engine.Options{
		LayoutEngine: engineName,
		Fancy:        fancy,
		FreeMove:     opts.freeMove,
		Cache:        cch,
		Logger:       logger,
	})
	defer e.Close()

	p := newProgress(logger)
	if err := e.LoadDescription(ctx, string(dot)); err != nil {
		return err
	}
	g := e.Graph()
	p.done(fmt.Sprintf("Laid out %d nodes, %d edges", len(g.Nodes), len(g.Edges)))

	if fs := e.FancyScene(); fs != nil {
		fs.Settle()
		logger.Debug("simulation settled")
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		outputPath := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			outputPath = opts.output
		}
		if err := c.writeArtifact(ctx, e, format, outputPath); err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		printFile(outputPath)
	}
	printStats(len(g.Nodes), len(g.Edges))
	return nil
}

// writeArtifact renders one format and writes it to outputPath.
func (c *CLI) writeArtifact(ctx context.Context, e *engine.Engine, format, outputPath string) error {
	switch format {
	case formatSVG:
		svg := e.SVG()
		if svg == nil {
			return fmt.Errorf("nothing to render")
		}
		return os.WriteFile(outputPath, export.EnsureNamespace(svg), 0644)
	case formatPNG:
		png, err := e.Export(ctx)
		if err != nil {
			return err
		}
		return os.WriteFile(outputPath, png, 0644)
	case formatJSON:
		return graphio.ExportJSON(e.Graph(), outputPath)
	}
	return fmt.Errorf("unknown format %s", format)
}
