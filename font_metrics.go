// font_metrics.go - bitmap font metrics JSON loader (A4).
//
// Grounded on original_source/src/font.c's font(): first_char/last_char/
// height plus a flat metrics array, 7 numbers per glyph. Image decoding and
// glyph blitting are out of scope per spec.md §1 — this only parses the
// metrics table and answers layout queries (line width) that a renderer
// needs before it draws anything.

package pixelcore

import (
	"encoding/json"
	"fmt"
)

// Glyph is one character's position and extent inside the font's source
// image, plus how far the cursor advances after drawing it.
type Glyph struct {
	Pos, Size, Offset Vec2
	Advance           float32
}

// Font holds the parsed glyph table for the half-open character range
// [FirstChar, LastChar).
type Font struct {
	FirstChar     int
	LastChar      int
	LineHeight    int
	LetterSpacing float32
	Glyphs        []Glyph
}

type fontMetricsJSON struct {
	FirstChar int       `json:"first_char"`
	LastChar  int       `json:"last_char"`
	Height    int       `json:"height"`
	Metrics   []float32 `json:"metrics"`
}

// LoadFontMetrics parses a font metrics JSON document. Malformed input
// (invalid JSON, last_char < first_char, wrong metrics length) is
// reported as a returned error, as LoadLevel does for a malformed level.
func LoadFontMetrics(data []byte) (*Font, error) {
	var doc fontMetricsJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pixelcore: font metrics: %w", err)
	}

	expected := doc.LastChar - doc.FirstChar
	if expected < 0 {
		return nil, fmt.Errorf("pixelcore: font metrics: last_char < first_char")
	}
	if len(doc.Metrics) != 7*expected {
		return nil, fmt.Errorf("pixelcore: font metrics has incorrect length (expected %d have %d)", 7*expected, len(doc.Metrics))
	}

	glyphs := make([]Glyph, expected)
	for i := 0; i < expected; i++ {
		a := i * 7
		glyphs[i] = Glyph{
			Pos:     Vec2{doc.Metrics[a+0], doc.Metrics[a+1]},
			Size:    Vec2{doc.Metrics[a+2], doc.Metrics[a+3]},
			Offset:  Vec2{doc.Metrics[a+4], doc.Metrics[a+5]},
			Advance: doc.Metrics[a+6],
		}
	}

	return &Font{
		FirstChar:  doc.FirstChar,
		LastChar:   doc.LastChar,
		LineHeight: doc.Height,
		Glyphs:     glyphs,
	}, nil
}

// glyph resolves the glyph for a rune, or ok == false if it's outside the
// font's declared range (soft failure; font_line_width/font_draw_line
// simply skip such characters).
func (f *Font) glyph(r rune) (Glyph, bool) {
	if int(r) < f.FirstChar || int(r) >= f.LastChar {
		return Glyph{}, false
	}
	return f.Glyphs[int(r)-f.FirstChar], true
}

// LineWidth measures a single line of text (stops at the first '\n'),
// matching font_line_width's advance-sum-minus-trailing-spacing.
func (f *Font) LineWidth(text string) float32 {
	width := float32(0)
	for _, r := range text {
		if r == '\n' {
			break
		}
		if g, ok := f.glyph(r); ok {
			width += g.Advance + f.LetterSpacing
		}
	}
	width -= f.LetterSpacing
	return maxf(0, width)
}
