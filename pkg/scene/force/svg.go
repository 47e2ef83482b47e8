package force

import (
	"bytes"
	"fmt"
	"time"

	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// Stroke widths for fancy-mode edges. Edges incident to the selection widen.
const (
	edgeWidth          = 1.0
	edgeWidthConnected = 2.5
)

// SVG serializes the scene from live simulation coordinates: edges as lines
// between endpoint bodies, nodes as translated groups with an inner content
// group carrying the hover scale, all wrapped in the view transform.
func (s *Scene) SVG() []byte {
	now := s.clock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&buf, `<g transform="%s">`+"\n", s.vc.Current())

	for _, e := range s.graph.Edges {
		s.renderEdge(&buf, e)
	}
	for _, b := range s.bodies {
		s.renderNode(&buf, b, now)
	}

	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

func (s *Scene) renderEdge(buf *bytes.Buffer, e *diagram.Edge) {
	src, okS := s.byID[e.Source]
	dst, okT := s.byID[e.Target]
	if !okS || !okT {
		return
	}

	role := s.highlight.EdgeRole(e.ID)
	width := edgeWidth
	class := "edge"
	if role == scene.RoleConnected {
		width = edgeWidthConnected
		class = "edge connected"
	}

	fmt.Fprintf(buf, `  <g class=%q%s>`+"\n", class, s.opacityAttr(role))
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke=%q stroke-width="%.1f"/>`+"\n",
		src.X, src.Y, dst.X, dst.Y, e.DisplayColor, width)
	if e.Label != "" {
		mx, my := (src.X+dst.X)/2, (src.Y+dst.Y)/2
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" font-size="10" fill=%q>%s</text>`+"\n",
			mx, my, e.DisplayColor, xmlEscape(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func (s *Scene) renderNode(buf *bytes.Buffer, b *Body, now time.Time) {
	n := s.graph.Node(b.ID)
	if n == nil {
		return
	}

	role := s.highlight.NodeRole(b.ID)
	class := "node"
	switch role {
	case scene.RoleSelected:
		class = "node selected"
	case scene.RoleConnected:
		class = "node connected"
	}

	fmt.Fprintf(buf, `  <g class=%q transform="translate(%.2f %.2f)"%s>`+"\n",
		class, b.X, b.Y, s.opacityAttr(role))

	// Hover scale lives on an inner content group so it never perturbs
	// simulation coordinates.
	scale := s.hoverValue(b.ID, now)
	if scale != 1 {
		fmt.Fprintf(buf, `    <g transform="scale(%.3f)">`+"\n", scale)
	} else {
		buf.WriteString("    <g>\n")
	}

	fill := n.FillColor
	if fill == "" || fill == "none" {
		fill = "white"
	}
	stroke := n.Color
	if stroke == "" {
		stroke = "black"
	}

	switch n.Shape.Kind {
	case diagram.ShapePolygon:
		buf.WriteString(`      <polygon points="`)
		for i, p := range n.Shape.Points {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(buf, "%.2f,%.2f", p.X, p.Y)
		}
		fmt.Fprintf(buf, `" fill=%q stroke=%q/>`+"\n", fill, stroke)
	default:
		fmt.Fprintf(buf, `      <ellipse rx="%.2f" ry="%.2f" fill=%q stroke=%q/>`+"\n",
			n.Shape.RX, n.Shape.RY, fill, stroke)
	}

	fmt.Fprintf(buf, `      <text text-anchor="middle" dy="0.35em" font-size="14">%s</text>`+"\n",
		xmlEscape(n.Name))
	buf.WriteString("    </g>\n  </g>\n")
}

// opacityAttr dims elements outside the selected neighborhood.
func (s *Scene) opacityAttr(role scene.Role) string {
	if s.highlight.Active && role == scene.RoleNone {
		return fmt.Sprintf(` opacity="%.2f"`, scene.DimOpacity)
	}
	return ""
}

// xmlEscape escapes text content for embedding in SVG.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
