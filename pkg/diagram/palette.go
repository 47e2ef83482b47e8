package diagram

// NeutralColor is the display color for untyped (unlabeled) edges.
const NeutralColor = "#999999"

// Palette is the fixed set of hues assigned to edge relationship types.
// The hash in [ColorFor] indexes into it, so reordering entries changes
// every derived color.
var Palette = [10]string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#46b5b5", // teal
	"#f032e6", // magenta
	"#9a6324", // brown
	"#808000", // olive
	"#000075", // navy
}

// ColorFor maps an edge's relationship label to a stable palette color.
// The empty label is treated as "untyped" and yields [NeutralColor].
//
// The hash sums character codes through a shift-subtract mixing step
// (h = c + h*31). The raw hash is order-sensitive, but folding it into the
// ten-entry palette is not: 31 ≡ 1 (mod 10), so the palette index reduces to
// the character sum and transposed labels share a hue. The function is pure
// and total; the same label always yields the same color regardless of
// render mode.
func ColorFor(label string) string {
	if label == "" {
		return NeutralColor
	}

	var h int32
	for _, r := range label {
		h = int32(r) + (h << 5) - h
	}
	idx := h % int32(len(Palette))
	if idx < 0 {
		idx += int32(len(Palette))
	}
	return Palette[idx]
}
