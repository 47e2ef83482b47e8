// Package layout wraps the external layout engine.
//
// Graphscope does not compute diagram layout itself: Graphviz turns graph
// description text (DOT) into a laid-out SVG diagram with absolute
// coordinates, and the rest of the application consumes that markup as an
// opaque input. Any engine failure (syntax error, unsupported construct) is
// surfaced as a single [errors.ErrCodeLayoutFailed] error; callers respond by
// clearing their model and rendering nothing.
package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphscope/pkg/errors"
)

// Engine lays out graph description text into SVG diagram markup.
type Engine struct {
	// Name of the Graphviz layout algorithm ("dot", "neato", ...).
	// Empty means "dot".
	Name string
}

// Render lays out the given DOT text and returns the resulting SVG markup.
//
// The returned markup always carries a normalized <svg> opening tag with an
// explicit xmlns declaration and a zero-origin viewBox, so downstream
// consumers (parser, exporter) can rely on both being present.
func (e *Engine) Render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "init layout engine")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse graph description")
	}
	defer g.Close()

	if e.Name != "" {
		gv.SetLayout(graphviz.Layout(e.Name))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "render layout")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the <svg> tag with a zero-origin viewBox and
// pixel dimensions matching it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
