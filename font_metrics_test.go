// font_metrics_test.go - font metrics JSON parsing and line width.

package pixelcore

import "testing"

func testFontJSON() []byte {
	// Two glyphs ('A','B'), 7 numbers each: pos(2) size(2) offset(2) advance(1).
	return []byte(`{
		"first_char": 65,
		"last_char": 67,
		"height": 12,
		"metrics": [
			0, 0, 8, 8, 0, 0, 9,
			8, 0, 8, 8, 0, 0, 7
		]
	}`)
}

func TestLoadFontMetricsParsesFlatArray(t *testing.T) {
	f, err := LoadFontMetrics(testFontJSON())
	if err != nil {
		t.Fatalf("LoadFontMetrics: %v", err)
	}
	if len(f.Glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(f.Glyphs))
	}
	if f.Glyphs[0].Advance != 9 || f.Glyphs[1].Advance != 7 {
		t.Fatalf("unexpected advances: %+v", f.Glyphs)
	}
	if f.LineHeight != 12 {
		t.Fatalf("LineHeight = %d, want 12", f.LineHeight)
	}
}

func TestLoadFontMetricsRejectsWrongLength(t *testing.T) {
	bad := []byte(`{"first_char": 65, "last_char": 67, "height": 12, "metrics": [1, 2, 3]}`)
	if _, err := LoadFontMetrics(bad); err == nil {
		t.Fatalf("expected an error for a metrics array of the wrong length")
	}
}

func TestLineWidthSumsAdvancesAndDropsTrailingSpacing(t *testing.T) {
	f, err := LoadFontMetrics(testFontJSON())
	if err != nil {
		t.Fatalf("LoadFontMetrics: %v", err)
	}
	f.LetterSpacing = 1

	w := f.LineWidth("AB")
	want := float32(9) + 1 + float32(7) // A's advance + spacing + B's advance, minus trailing spacing
	if w != want {
		t.Fatalf("LineWidth(AB) = %v, want %v", w, want)
	}

	if w := f.LineWidth("A\nB"); w != 9 {
		t.Fatalf("LineWidth stopped at newline = %v, want 9", w)
	}

	if w := f.LineWidth("!"); w != 0 {
		t.Fatalf("out-of-range character should contribute 0 width, got %v", w)
	}
}
