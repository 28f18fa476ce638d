package ansiplay

// Ramp is an ordered list of glyphs from lightest to densest.
type Ramp []rune

// NewRamp returns the ramp for s, falling back to DefaultRamp when s has
// fewer than two glyphs.
func NewRamp(s string) Ramp {
	r := Ramp(s)
	if len(r) < 2 {
		return Ramp(DefaultRamp)
	}
	return r
}

// Index maps a brightness in [0, 255] to a ramp position, computed as
// floor(v / (256 / len)) and clamped to the last glyph.
func (r Ramp) Index(v uint8) int {
	i := int(v) * len(r) / 256
	if i >= len(r) {
		return len(r) - 1
	}
	return i
}

// Glyph returns the glyph for brightness v.
func (r Ramp) Glyph(v uint8) rune {
	return r[r.Index(v)]
}

// Blank returns the lightest glyph, used for padding and transparency.
func (r Ramp) Blank() rune {
	return r[0]
}
