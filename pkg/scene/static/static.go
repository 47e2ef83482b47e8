// Package static renders a diagram using its original layout coordinates.
//
// The scene mounts the native markup unmodified, so the layout engine's
// intrinsic node and edge placement is preserved exactly. On mount every
// edge is recolored per its derived display color; afterwards the scene only
// wraps the native root in a view-transform group and injects selection
// styling when serializing. Clicks are resolved to node identities through a
// geometric hit test against the parsed model.
package static

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/scene"
	"github.com/matzehuels/graphscope/pkg/view"
)

var (
	svgOpenRe  = regexp.MustCompile(`(?s)<svg[^>]*>`)
	groupRe    = regexp.MustCompile(`(?s)(<g[^>]*class="(node|edge)"[^>]*>)\s*<title>(.*?)</title>`)
	strokeRe   = regexp.MustCompile(`stroke="[^"]+"`)
	fillRe     = regexp.MustCompile(`fill="[^"]+"`)
	viewBoxRe  = regexp.MustCompile(`viewBox="([0-9.eE+-]+)\s+([0-9.eE+-]+)\s+([0-9.eE+-]+)\s+([0-9.eE+-]+)"`)
	edgeBlocks = regexp.MustCompile(`(?s)<g[^>]*class="edge"[^>]*>.*?</g>`)
)

// Scene is the static render mode.
type Scene struct {
	graph   *diagram.GraphData
	vc      *view.Controller
	content string // native markup inside the <svg> element, edges recolored
	width   float64
	height  float64

	// Native root transform, decomposed: screen = scale*(world+translate).
	sx, sy, tx, ty float64

	highlight scene.Highlight
}

// New mounts the native diagram markup as a static scene.
// The markup must contain an <svg> element; its inner content is kept
// verbatim apart from edge recoloring.
func New(markup []byte, g *diagram.GraphData, vc *view.Controller) (*Scene, error) {
	loc := svgOpenRe.FindIndex(markup)
	end := strings.LastIndex(string(markup), "</svg>")
	if loc == nil || end < loc[1] {
		return nil, errors.New(errors.ErrCodeInvalidMarkup, "markup has no svg element")
	}

	s := &Scene{
		graph:   g,
		vc:      vc,
		content: string(markup[loc[1]:end]),
		sx:      1,
		sy:      1,
	}
	s.width, s.height = viewBoxSize(string(markup[loc[0]:loc[1]]))
	s.sx, s.sy, s.tx, s.ty = g.Transform()
	s.recolorEdges()
	return s, nil
}

// viewBoxSize extracts width/height from the svg tag's viewBox.
func viewBoxSize(svgTag string) (float64, float64) {
	m := viewBoxRe.FindStringSubmatch(svgTag)
	if m == nil {
		return 0, 0
	}
	w, _ := strconv.ParseFloat(m[3], 64)
	h, _ := strconv.ParseFloat(m[4], 64)
	return w, h
}

// recolorEdges rewrites each edge group's stroke and fill to the edge's
// display color. Runs once at mount; "none" fills (spline bodies) are kept.
func (s *Scene) recolorEdges() {
	colors := make(map[string]string, len(s.graph.Edges))
	for _, e := range s.graph.Edges {
		colors[e.ID] = e.DisplayColor
	}

	s.content = edgeBlocks.ReplaceAllStringFunc(s.content, func(block string) string {
		color, ok := colors[blockTitle(block)]
		if !ok {
			return block
		}
		block = strokeRe.ReplaceAllStringFunc(block, func(attr string) string {
			if attr == `stroke="none"` {
				return attr
			}
			return fmt.Sprintf("stroke=%q", color)
		})
		block = fillRe.ReplaceAllStringFunc(block, func(attr string) string {
			if attr == `fill="none"` {
				return attr
			}
			return fmt.Sprintf("fill=%q", color)
		})
		return block
	})
}

// blockTitle extracts and XML-decodes the <title> of a group block.
// Graphviz escapes separator dashes as numeric entities, so raw title text
// never matches parsed identities without decoding.
func blockTitle(block string) string {
	m := groupRe.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return decodeEntities(m[3])
}

// decodeEntities decodes XML character references in a title string.
func decodeEntities(s string) string {
	var out string
	if err := xml.Unmarshal([]byte("<t>"+s+"</t>"), &out); err != nil {
		return s
	}
	return out
}

// =============================================================================
// Scene interface
// =============================================================================

var _ scene.Scene = (*Scene)(nil)

// Locate returns the node's on-screen position: the static layout coordinate
// pushed through the native root transform and the live view transform.
func (s *Scene) Locate(id string) (float64, float64, bool) {
	n := s.graph.Node(id)
	if n == nil {
		return 0, 0, false
	}
	nx := s.sx * (n.X + s.tx)
	ny := s.sy * (n.Y + s.ty)
	x, y := s.vc.Current().Apply(nx, ny)
	return x, y, true
}

// SetHighlight replaces the scene's selection styling.
func (s *Scene) SetHighlight(h scene.Highlight) {
	s.highlight = h
}

// SVG serializes the scene: the recolored native content wrapped in the
// current view transform, with selection styling injected per element.
func (s *Scene) SVG() []byte {
	content := s.content
	if s.highlight.Active {
		content = s.applyHighlight(content)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&b, `<g transform="%s">`+"\n", s.vc.Current())
	b.WriteString(content)
	b.WriteString("\n</g>\n</svg>\n")
	return []byte(b.String())
}

// applyHighlight rewrites node/edge group opening tags with the selection's
// opacity and role markers.
func (s *Scene) applyHighlight(content string) string {
	return groupRe.ReplaceAllStringFunc(content, func(m string) string {
		parts := groupRe.FindStringSubmatch(m)
		open, kind, title := parts[1], parts[2], parts[3]

		var role scene.Role
		switch kind {
		case "node":
			role = s.highlight.NodeRole(decodeEntities(title))
		case "edge":
			role = s.highlight.EdgeRole(decodeEntities(title))
		}

		switch role {
		case scene.RoleSelected:
			open = addClass(open, "selected")
		case scene.RoleConnected:
			open = addClass(open, "connected")
		default:
			open = strings.Replace(open, "<g ",
				fmt.Sprintf(`<g opacity="%.2f" `, scene.DimOpacity), 1)
		}
		return open + "<title>" + title + "</title>"
	})
}

// addClass appends a marker class to a group opening tag.
func addClass(open, class string) string {
	return strings.Replace(open, `class="`, `class="`+class+" ", 1)
}

// HitTest resolves a screen coordinate to the node containing it, walking the
// view transform and the native root transform back to layout space.
// Returns ok=false for background clicks.
func (s *Scene) HitTest(screenX, screenY float64) (string, bool) {
	wx, wy := s.vc.Current().Invert(screenX, screenY)
	if s.sx != 0 {
		wx = wx/s.sx - s.tx
	}
	if s.sy != 0 {
		wy = wy/s.sy - s.ty
	}

	for _, n := range s.graph.Nodes {
		dx, dy := wx-n.X, wy-n.Y
		switch n.Shape.Kind {
		case diagram.ShapeEllipse:
			rx, ry := n.Shape.RX, n.Shape.RY
			if rx > 0 && ry > 0 && (dx*dx)/(rx*rx)+(dy*dy)/(ry*ry) <= 1 {
				return n.ID, true
			}
		default:
			r := n.Shape.Radius
			if dx*dx+dy*dy <= r*r {
				return n.ID, true
			}
		}
	}
	return "", false
}

// Close releases the scene. The static scene holds no timers or simulations,
// so this only drops the mounted markup.
func (s *Scene) Close() {
	s.content = ""
}

// Size returns the native viewport dimensions.
func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}
