package ansiplay

// Viewport is the fixed maximum character grid of the output.
type Viewport struct {
	MaxWidth  int
	MaxHeight int
}

// Mode selects how content that already fits the viewport is sized.
type Mode int

const (
	// ModeImage keeps the width-doubled native size when it fits.
	ModeImage Mode = iota
	// ModeVideo always fills the whole viewport when the source fits.
	ModeVideo
)

// Dimensions is the target character grid of one frame. LeftPadding
// centers narrow content horizontally; there is no vertical padding.
type Dimensions struct {
	Width       int
	Height      int
	LeftPadding int
}

// Fit computes the output grid for a source of width x height pixels.
//
// Terminal cells are about twice as tall as wide, so the width is doubled
// before fitting. A width overflow scales both sides by MaxWidth over the
// doubled width; if the height still overflows, both sides are scaled
// again from the doubled native size by MaxHeight over the height, which
// replaces the width based result.
func Fit(width, height int, vp Viewport, mode Mode) (Dimensions, error) {
	if width <= 0 || height <= 0 {
		return Dimensions{}, &GeometryError{Width: width, Height: height}
	}
	if vp.MaxWidth <= 0 || vp.MaxHeight <= 0 {
		return Dimensions{}, &GeometryError{Width: vp.MaxWidth, Height: vp.MaxHeight}
	}

	doubled := width * 2
	w, h := doubled, height
	switch {
	case doubled > vp.MaxWidth || height > vp.MaxHeight:
		if doubled > vp.MaxWidth {
			percent := float64(vp.MaxWidth) / float64(doubled)
			w = vp.MaxWidth
			h = int(float64(height) * percent)
		}
		if h > vp.MaxHeight {
			percent := float64(vp.MaxHeight) / float64(height)
			w = int(float64(doubled) * percent)
			h = vp.MaxHeight
		}
	case mode == ModeVideo:
		w, h = vp.MaxWidth, vp.MaxHeight
	}

	w = max(w, 1)
	h = max(h, 1)
	return Dimensions{
		Width:       w,
		Height:      h,
		LeftPadding: (vp.MaxWidth - w) / 2,
	}, nil
}
