package layout

import (
	"strings"
	"testing"
)

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="134pt" height="116pt" viewBox="0.00 0.00 134.00 116.00" xmlns="http://www.w3.org/2000/svg">
<g class="graph"/>
</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 134.00 116.00" width="134" height="116">`) {
		t.Errorf("svg tag not normalized:\n%s", out)
	}
	if strings.Contains(out, "134pt") {
		t.Errorf("point-based dimensions survived normalization:\n%s", out)
	}
}

func TestNormalizeViewBoxNoMatch(t *testing.T) {
	in := []byte(`<svg width="10" height="10"><g/></svg>`)
	if out := normalizeViewBox(in); string(out) != string(in) {
		t.Errorf("markup without a viewBox was rewritten: %s", out)
	}
}

func TestNormalizeViewBoxZeroSize(t *testing.T) {
	in := []byte(`<svg viewBox="0 0 0 0"/>`)
	if out := normalizeViewBox(in); string(out) != string(in) {
		t.Errorf("degenerate viewBox was rewritten: %s", out)
	}
}
