// Package scene defines the capability interface shared by Graphscope's two
// render modes.
//
// The engine, zoom-centering and selection code never touch a concrete
// renderer: they depend on [Scene], implemented once by the static scene
// (original layout coordinates, native markup) and once by the force-directed
// fancy scene. Both expose element lookup in screen coordinates, highlight
// application, SVG serialization and teardown.
package scene

import "github.com/matzehuels/graphscope/pkg/diagram"

// Opacity applied to elements outside the selected neighborhood.
const DimOpacity = 0.15

// Role classifies an element's part in the current selection.
type Role int

const (
	RoleNone      Role = iota // dimmed (or unstyled when nothing is selected)
	RoleSelected              // the selected node itself
	RoleConnected             // direct neighbor, or edge incident to the selection
)

// Scene is the mode-independent handle to a mounted renderer.
//
// Locate returns an element's current on-screen position: direct simulation
// coordinates in fancy mode, the static layout position pushed through the
// native and view transforms in static mode. A lookup miss returns ok=false
// and callers fall back to the viewport center.
type Scene interface {
	Locate(id string) (x, y float64, ok bool)
	SetHighlight(h Highlight)
	SVG() []byte
	Close()
}

// =============================================================================
// Highlight
// =============================================================================

// Highlight is the computed selection styling for one graph and one selected
// id. Elements missing from the role maps are dimmed whenever Active is true.
type Highlight struct {
	// Selected is the selected node id, or empty.
	Selected string

	// Active is true when some id is selected; everything not carrying a
	// role is then dimmed. Selecting an id with no matches in the current
	// graph leaves everything dimmed with nothing marked selected; that is
	// accepted behavior, not an error.
	Active bool

	Nodes map[string]Role
	Edges map[string]Role
}

// NodeRole returns the role for a node id.
func (h Highlight) NodeRole(id string) Role {
	return h.Nodes[id]
}

// EdgeRole returns the role for an edge id.
func (h Highlight) EdgeRole(id string) Role {
	return h.Edges[id]
}

// Compute derives the highlight for the given selection: the selected node,
// its direct neighbors, and every edge whose endpoints include the selection.
// An empty selection returns an inactive highlight (all styling cleared).
func Compute(g *diagram.GraphData, selected string) Highlight {
	h := Highlight{
		Selected: selected,
		Nodes:    make(map[string]Role),
		Edges:    make(map[string]Role),
	}
	if selected == "" || g == nil {
		return h
	}
	h.Active = true

	if g.Node(selected) != nil {
		h.Nodes[selected] = RoleSelected
	}
	for id := range g.Neighbors(selected) {
		h.Nodes[id] = RoleConnected
	}
	for _, e := range g.Edges {
		if e.Source == selected || e.Target == selected {
			h.Edges[e.ID] = RoleConnected
		}
	}
	return h
}
