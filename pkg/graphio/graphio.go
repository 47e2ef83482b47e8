// Package graphio provides JSON import and export for parsed graph models.
//
// This is the "emit upward" surface of the viewer: list/search/inspector
// tooling outside the core consumes the derived [diagram.GraphData] as JSON
// rather than re-parsing diagram markup. The format is the model's own JSON
// shape with no extra envelope, so a written file re-imports identically.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/graphscope/pkg/diagram"
)

// WriteJSON encodes a graph model as indented JSON and writes it to w.
func WriteJSON(g *diagram.GraphData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph model to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *diagram.GraphData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadJSON decodes a graph model from r.
//
// Edges referencing unknown node ids are dropped rather than rejected; the
// parser guarantees this never happens for its own output, but hand-written
// files get the same best-effort treatment as parse irregularities.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*diagram.GraphData, error) {
	var g diagram.GraphData
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if known[e.Source] && known[e.Target] {
			kept = append(kept, e)
		}
	}
	g.Edges = kept

	return &g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph model.
func ImportJSON(path string) (*diagram.GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
