// Package diagram parses a laid-out SVG diagram into a normalized graph model.
//
// # Overview
//
// The layout engine (see [github.com/matzehuels/graphscope/pkg/layout])
// produces SVG markup with one group per node and edge, each carrying a
// machine-readable <title> used as its semantic identity, and a leading shape
// element carrying geometry, fill and stroke. This package turns that markup
// into [GraphData]: nodes with position, shape and color, edges with
// endpoints, label and a derived display color, plus the diagram's native
// viewport and root transform.
//
// # Guarantees
//
// Parsing the same markup twice yields structurally equal GraphData; all
// derived values ([ColorFor], bounding radii) are pure functions of the
// input. Parse irregularities are recovered locally: an edge title without a
// recognizable endpoint separator drops that edge, a node without a standard
// shape primitive falls back to default ellipse dimensions. Neither
// interrupts parsing of the rest of the graph.
package diagram

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/graphscope/pkg/errors"
)

// =============================================================================
// XML Structures - Graphviz SVG Output
// =============================================================================

type xmlSVG struct {
	ViewBox string     `xml:"viewBox,attr"`
	Groups  []xmlGroup `xml:"g"`
}

type xmlGroup struct {
	Class     string       `xml:"class,attr"`
	Transform string       `xml:"transform,attr"`
	Title     string       `xml:"title"`
	Ellipses  []xmlEllipse `xml:"ellipse"`
	Polygons  []xmlPolygon `xml:"polygon"`
	Paths     []xmlPath    `xml:"path"`
	Texts     []xmlText    `xml:"text"`
	Groups    []xmlGroup   `xml:"g"`
}

type xmlEllipse struct {
	CX     float64 `xml:"cx,attr"`
	CY     float64 `xml:"cy,attr"`
	RX     float64 `xml:"rx,attr"`
	RY     float64 `xml:"ry,attr"`
	Fill   string  `xml:"fill,attr"`
	Stroke string  `xml:"stroke,attr"`
}

type xmlPolygon struct {
	Points string `xml:"points,attr"`
	Fill   string `xml:"fill,attr"`
	Stroke string `xml:"stroke,attr"`
}

type xmlPath struct {
	D      string `xml:"d,attr"`
	Fill   string `xml:"fill,attr"`
	Stroke string `xml:"stroke,attr"`
}

type xmlText struct {
	X     float64 `xml:"x,attr"`
	Y     float64 `xml:"y,attr"`
	Value string  `xml:",chardata"`
}

// =============================================================================
// Parse
// =============================================================================

// Edge title separators. Directed is checked first so "A->B" never splits
// on the leading dash of "->".
const (
	sepDirected   = "->"
	sepUndirected = "--"
)

// Parse turns diagram markup into a [GraphData] model.
//
// Empty markup yields an empty model. Markup that cannot be decoded as XML
// returns an error with code [errors.ErrCodeInvalidMarkup]; all other
// irregularities are recovered per the package documentation.
func Parse(markup []byte) (*GraphData, error) {
	out := &GraphData{}
	if len(bytes.TrimSpace(markup)) == 0 {
		return out, nil
	}

	var doc xmlSVG
	if err := xml.Unmarshal(markup, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMarkup, err, "decode diagram markup")
	}
	out.ViewBox = doc.ViewBox

	// The root group carries the diagram's native transform.
	for i := range doc.Groups {
		if doc.Groups[i].Class == "graph" {
			out.RootTransform = doc.Groups[i].Transform
			break
		}
	}

	seen := make(map[string]bool)
	walkGroups(doc.Groups, func(g *xmlGroup) {
		switch g.Class {
		case "node":
			n := parseNode(g)
			if n.ID == "" || seen[n.ID] {
				return
			}
			seen[n.ID] = true
			out.Nodes = append(out.Nodes, n)
		case "edge":
			if e := parseEdge(g); e != nil {
				out.Edges = append(out.Edges, e)
			}
		}
	})

	return out, nil
}

// walkGroups visits every group in document order, recursing into
// subgraph clusters.
func walkGroups(groups []xmlGroup, visit func(*xmlGroup)) {
	for i := range groups {
		g := &groups[i]
		visit(g)
		walkGroups(g.Groups, visit)
	}
}

// =============================================================================
// Nodes
// =============================================================================

// parseNode builds a Node from a node group. Identity is the group's title
// text. The center prefers the text label's anchor point and falls back to
// the primary shape's center.
func parseNode(g *xmlGroup) *Node {
	n := &Node{
		ID:   g.Title,
		Name: g.Title,
	}

	cx, cy, haveCenter := shapeCenter(g)
	if len(g.Texts) > 0 {
		cx, cy = g.Texts[0].X, g.Texts[0].Y
		haveCenter = true
	}
	n.X, n.Y = cx, cy

	switch {
	case len(g.Ellipses) > 0:
		el := g.Ellipses[0]
		n.Color = el.Stroke
		n.FillColor = el.Fill
		n.Shape = Shape{
			Kind:   ShapeEllipse,
			RX:     el.RX,
			RY:     el.RY,
			Radius: max(el.RX, el.RY),
		}
	case len(g.Polygons) > 0:
		poly := g.Polygons[0]
		n.Color = poly.Stroke
		n.FillColor = poly.Fill
		pts := parsePoints(poly.Points)
		if !haveCenter {
			n.X, n.Y = pointsCenter(pts)
		}
		n.Shape = relativePolygon(pts, n.X, n.Y)
	default:
		// Free-form outlines (bare paths) fall back to a default ellipse.
		// This is an accepted simplification, not an error.
		if len(g.Paths) > 0 {
			n.Color = g.Paths[0].Stroke
			n.FillColor = g.Paths[0].Fill
		}
		n.Shape = Shape{
			Kind:   ShapeEllipse,
			RX:     DefaultRadiusX,
			RY:     DefaultRadiusY,
			Radius: DefaultRadiusX,
		}
	}

	return n
}

// shapeCenter returns the center of the group's primary shape, if any.
func shapeCenter(g *xmlGroup) (float64, float64, bool) {
	if len(g.Ellipses) > 0 {
		return g.Ellipses[0].CX, g.Ellipses[0].CY, true
	}
	if len(g.Polygons) > 0 {
		pts := parsePoints(g.Polygons[0].Points)
		if len(pts) > 0 {
			x, y := pointsCenter(pts)
			return x, y, true
		}
	}
	return 0, 0, false
}

// relativePolygon converts absolute polygon points into node-relative offsets
// and computes the maximum offset distance as the bounding radius.
func relativePolygon(pts []Point, cx, cy float64) Shape {
	s := Shape{Kind: ShapePolygon, Points: make([]Point, len(pts))}
	for i, p := range pts {
		dx, dy := p.X-cx, p.Y-cy
		s.Points[i] = Point{X: dx, Y: dy}
		if d := math.Hypot(dx, dy); d > s.Radius {
			s.Radius = d
		}
	}
	return s
}

// pointsCenter returns the center of the bounding box of pts.
func pointsCenter(pts []Point) (float64, float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return (minX + maxX) / 2, (minY + maxY) / 2
}

// parsePoints parses an SVG points attribute ("x1,y1 x2,y2 ...").
// Malformed pairs are skipped.
func parsePoints(s string) []Point {
	var pts []Point
	for _, pair := range strings.Fields(s) {
		xy := strings.SplitN(pair, ",", 2)
		if len(xy) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(xy[0], 64)
		y, errY := strconv.ParseFloat(xy[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}

// =============================================================================
// Edges
// =============================================================================

// parseEdge builds an Edge from an edge group. The title encodes
// source-separator-target; a title without a recognizable separator is
// silently dropped since the title alone cannot identify the endpoints.
func parseEdge(g *xmlGroup) *Edge {
	title := g.Title

	var source, target string
	var directed bool
	if s, t, ok := strings.Cut(title, sepDirected); ok {
		source, target, directed = s, t, true
	} else if s, t, ok := strings.Cut(title, sepUndirected); ok {
		source, target = s, t
	} else {
		return nil
	}

	e := &Edge{
		ID:       title,
		Source:   source,
		Target:   target,
		Directed: directed,
	}
	if len(g.Texts) > 0 {
		e.Label = strings.TrimSpace(g.Texts[0].Value)
	}
	e.DisplayColor = ColorFor(e.Label)
	if len(g.Paths) > 0 {
		e.Path = g.Paths[0].D
	}
	return e
}
