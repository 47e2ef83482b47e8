// Package pkg provides the core libraries for the Graphscope diagram viewer.
//
// # Overview
//
// Graphscope lays out Graphviz DOT text into a diagram, parses the laid-out
// markup into a normalized graph model, and renders that model in two
// interchangeable modes: static (the native layout geometry, untouched) and
// fancy (a force-directed simulation anchored to the compacted layout). On
// top of the model it provides pan/zoom, selection highlighting, drag
// interaction, and PNG export.
//
// # Architecture
//
// The typical data flow:
//
//	DOT text
//	     ↓
//	[layout] package (Graphviz → laid-out SVG markup)
//	     ↓
//	[diagram] package (markup → GraphData model)
//	     ↓
//	[scene/static] or [scene/force] (mounted scene)
//	     ↓
//	[export] package (SVG / PNG artifacts)
//
// The [engine] package orchestrates the flow: it owns the model, the shared
// view transform, the mode flags, and the mounted scene, and exposes the
// imperative surface (load, zoom, pan, pointer input, export) used by the
// CLI, the TUI viewer, and the HTTP API.
//
// # Main Packages
//
// [layout] - Wraps the external layout engine (goccy/go-graphviz). DOT in,
// normalized SVG markup out; layout failures surface as structured errors and
// the engine clears its model.
//
// [diagram] - The diagram parser and color classifier. Produces [diagram.GraphData]:
// node identities from group titles, centers from label anchors or shape
// geometry, edges recovered from their `A->B` / `A--B` titles, and a
// deterministic per-label display color.
//
// [scene] - The capability interface both render modes implement (element
// lookup, highlight application, serialization, teardown), plus the shared
// neighbor-set computation behind selection highlighting.
//
// [scene/static] - Mounts the native markup unmodified inside a view
// transform group, recolors edges, and hit-tests clicks against parsed
// geometry.
//
// [scene/force] - The force-directed fancy mode: a d3-style simulation over
// an arena of per-node bodies, a clock-driven drag gesture state machine,
// hover raise/grow, and the free-move toggle.
//
// [view] - The pan/zoom transform controller. The only state retained across
// mode switches.
//
// [engine] - Orchestration and the render handle exposed to hosts.
//
// [export] - SVG serialization fixes and 2x PNG rasterization via
// rsvg-convert.
//
// [graphio] - JSON import/export of the graph model for external tooling.
//
// # Infrastructure
//
// [cache] - Layout and export artifact caching with file, Redis, and null
// backends, keyed by SHA-256 content hashes.
//
// [config] - TOML configuration (viewer defaults, cache backend selection).
//
// [errors] - Structured code-based errors shared across the pipeline.
//
// [observability] - Hook registration for metrics/tracing backends without
// hard dependencies.
//
// [anim] - Small tween helper used by view transitions and return
// animations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/scene/...     # Specific package
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/layout
// [diagram]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/diagram
// [scene]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/scene
// [scene/static]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/scene/static
// [scene/force]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/scene/force
// [view]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/view
// [engine]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/engine
// [export]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/export
// [graphio]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/graphio
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/observability
// [anim]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/anim
// [diagram.GraphData]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/diagram#GraphData
package pkg
