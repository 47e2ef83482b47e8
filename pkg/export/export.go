// Package export rasterizes the currently mounted diagram into a PNG.
//
// The exporter works on whichever scene is active: it takes the scene's
// serialized markup, ensures the required namespace declaration is present,
// and rasterizes at a fixed 2x supersampling with an opaque white background
// painted first, so diagrams with transparent regions never export as
// transparent. Conversion runs through rsvg-convert; any decode failure
// aborts the export with [errors.ErrCodeExportFailed] and no partial file is
// written.
package export

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/matzehuels/graphscope/pkg/errors"
)

// Scale is the fixed supersampling factor for raster export.
const Scale = 2.0

// Background painted behind the diagram.
const Background = "white"

var svgTagRe = regexp.MustCompile(`<svg[^>]*>`)

// PNG rasterizes SVG markup to PNG bytes.
func PNG(svg []byte) ([]byte, error) {
	svg = EnsureNamespace(svg)
	out, err := rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", Scale), "-b", Background)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "rasterize diagram")
	}
	return out, nil
}

// WriteFile rasterizes and writes the image in one step. On any failure the
// destination is left untouched.
func WriteFile(path string, svg []byte) error {
	png, err := PNG(svg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
	}
	return nil
}

// EnsureNamespace guarantees the serialized markup is self-contained by
// adding the SVG namespace declaration when the source omitted it.
func EnsureNamespace(svg []byte) []byte {
	loc := svgTagRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := string(svg[loc[0]:loc[1]])
	if strings.Contains(tag, "xmlns=") {
		return svg
	}
	patched := strings.Replace(tag, "<svg", `<svg xmlns="http://www.w3.org/2000/svg"`, 1)
	var buf bytes.Buffer
	buf.Write(svg[:loc[0]])
	buf.WriteString(patched)
	buf.Write(svg[loc[1]:])
	return buf.Bytes()
}

// rsvgConvert shells out to rsvg-convert for format conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
