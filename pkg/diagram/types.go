package diagram

import (
	"regexp"
	"strconv"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Shape kinds recognized by the parser.
const (
	ShapeEllipse = "ellipse"
	ShapePolygon = "polygon"
)

// Default ellipse radii used when a node carries no standard shape primitive.
// These match the Graphviz default node size (0.75in x 0.5in at 72dpi).
const (
	DefaultRadiusX = 27.0
	DefaultRadiusY = 18.0
)

// =============================================================================
// GraphData - Normalized Diagram Model
// =============================================================================

// GraphData is the normalized graph model produced by [Parse].
// It is created fresh on every parse and must be treated as immutable by
// consumers; scenes derive their own mutable simulation copies so repeated
// renders against the same input stay idempotent.
type GraphData struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	// ViewBox is the diagram's native viewport string, e.g. "0 0 134 116".
	ViewBox string `json:"view_box,omitempty"`

	// RootTransform is the native root group transform string, e.g.
	// "scale(1 1) rotate(0) translate(4 112)".
	RootTransform string `json:"root_transform,omitempty"`
}

var (
	rootScaleRe  = regexp.MustCompile(`scale\(([0-9.eE+-]+)[ ,]*([0-9.eE+-]*)\)`)
	rootTranslRe = regexp.MustCompile(`translate\(([0-9.eE+-]+)[ ,]*([0-9.eE+-]*)\)`)
)

// Transform decomposes RootTransform, normally of the form
// "scale(1 1) rotate(0) translate(4 112)", into its scale and translate
// components: viewBox position = scale*(layout position + translate).
// Rotation is always zero in layout output and is ignored. An empty or
// unrecognized transform yields the identity.
func (g *GraphData) Transform() (sx, sy, tx, ty float64) {
	sx, sy = 1, 1
	if m := rootScaleRe.FindStringSubmatch(g.RootTransform); m != nil {
		sx, _ = strconv.ParseFloat(m[1], 64)
		sy = sx
		if m[2] != "" {
			sy, _ = strconv.ParseFloat(m[2], 64)
		}
	}
	if m := rootTranslRe.FindStringSubmatch(g.RootTransform); m != nil {
		tx, _ = strconv.ParseFloat(m[1], 64)
		if m[2] != "" {
			ty, _ = strconv.ParseFloat(m[2], 64)
		}
	}
	return sx, sy, tx, ty
}

// Node returns the node with the given id, or nil if it does not exist.
func (g *GraphData) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Neighbors returns the set of node ids sharing an edge with id.
// The selected id itself is not part of the result.
func (g *GraphData) Neighbors(id string) map[string]bool {
	out := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Source == id {
			out[e.Target] = true
		}
		if e.Target == id {
			out[e.Source] = true
		}
	}
	delete(out, id)
	return out
}

// Empty reports whether the model contains no nodes.
func (g *GraphData) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}

// =============================================================================
// Node
// =============================================================================

// Node is a single diagram node with geometry and style metadata.
// ID is stable across re-parses as long as the label text is unchanged.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"` // Display label (normally equal to ID)

	// Visual style
	Color     string `json:"color,omitempty"`      // Outline color
	FillColor string `json:"fill_color,omitempty"` // Fill color

	Shape Shape `json:"shape"`

	// Position in the static layout's coordinate space.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape carries a node's geometry. Kind is either [ShapeEllipse] or
// [ShapePolygon]. Polygon points are expressed relative to the node's own
// center. Radius is the bounding radius, always at least the largest visual
// extent of the node, and is used as the minimum collision-avoidance radius.
type Shape struct {
	Kind   string  `json:"kind"`
	RX     float64 `json:"rx,omitempty"`     // Ellipse horizontal radius
	RY     float64 `json:"ry,omitempty"`     // Ellipse vertical radius
	Points []Point `json:"points,omitempty"` // Polygon points, node-relative
	Radius float64 `json:"radius"`
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a single diagram edge. ID is derived from the edge title
// (source, separator, target) and is used to re-locate the matching rendered
// element. Source and Target reference Node ids.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`

	// Label is the optional relationship type.
	Label string `json:"label,omitempty"`

	// Directed is false for edges written with the undirected separator.
	Directed bool `json:"directed"`

	// DisplayColor is a deterministic function of Label (see [ColorFor]).
	DisplayColor string `json:"display_color"`

	// Path is the native curve data of the edge's spline, kept verbatim so
	// the static scene can re-emit it unmodified.
	Path string `json:"path,omitempty"`
}
