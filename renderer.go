package ansiplay

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wbrown/ansiplay/imageutil"
)

// Cell is one character of the output grid.
type Cell struct {
	Glyph rune
	Class ColorClass
}

// Grid is the classified output of one frame before line assembly.
type Grid struct {
	Dims  Dimensions
	Cells [][]Cell
}

// RenderedFrame is one frame ready for the terminal. Lines always number
// at least the viewport height so that consecutive frames overwrite each
// other completely. Reset is set on colored frames, whose color is reset
// once after the last line.
type RenderedFrame struct {
	Lines   []string
	Clear   bool
	Reset   bool
	Trailer string
	Grid    *Grid
}

// String joins the frame lines and trailer as WriteFrame would, without
// the clear escape.
func (f *RenderedFrame) String() string {
	s := strings.Join(f.Lines, "\n") + "\n"
	if f.Reset {
		s += ResetColor
	}
	return s + f.Trailer
}

// Renderer converts raster frames into rendered frames. A Renderer holds
// only immutable configuration and may be shared.
type Renderer struct {
	cfg    Config
	ramp   Ramp
	interp imageutil.Interpolation
	clock  Clock
	logger *zap.SugaredLogger
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// WithInterpolation overrides the resampler chosen from Config.Fast.
func WithInterpolation(interp imageutil.Interpolation) RendererOption {
	return func(r *Renderer) {
		r.interp = interp
	}
}

// WithRendererClock sets the clock used for debug timings.
func WithRendererClock(c Clock) RendererOption {
	return func(r *Renderer) {
		r.clock = c
	}
}

// WithRendererLogger sets the logger.
func WithRendererLogger(l *zap.SugaredLogger) RendererOption {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer creates a Renderer for cfg. Fast selects nearest neighbor
// resampling, otherwise bilinear is used.
func NewRenderer(cfg Config, opts ...RendererOption) *Renderer {
	r := &Renderer{
		cfg:    cfg,
		ramp:   NewRamp(cfg.Ramp),
		interp: imageutil.InterpolationLinear,
		clock:  SystemClock{},
		logger: zap.NewNop().Sugar(),
	}
	if cfg.Fast {
		r.interp = imageutil.InterpolationNearest
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Ramp returns the glyph ramp in use.
func (r *Renderer) Ramp() Ramp {
	return r.ramp
}

// Classify resamples f to dims and maps every cell to a glyph and, with
// color enabled, a color class.
func (r *Renderer) Classify(f *imageutil.Frame, dims Dimensions) *Grid {
	f = imageutil.ResizeFrame(f, dims.Width, dims.Height, r.interp)
	var hsv [][]imageutil.HSV
	if r.cfg.Color && f.Format.Kind == imageutil.KindRGB {
		hsv = imageutil.FrameToHSV(f)
	}
	cells := make([][]Cell, dims.Height)
	for y := 0; y < dims.Height; y++ {
		row := make([]Cell, dims.Width)
		switch {
		case f.Format.Kind == imageutil.KindIndexed:
			r.classifyIndexedRow(f, y, row)
		case hsv != nil:
			r.classifyHSVRow(hsv[y], row)
		default:
			r.classifyRGBRow(f, y, row)
		}
		cells[y] = row
	}
	return &Grid{Dims: dims, Cells: cells}
}

func (r *Renderer) classifyRGBRow(f *imageutil.Frame, y int, row []Cell) {
	for x := range row {
		row[x] = r.classifyPixel(f.RGB.GetRGB(x, y))
	}
}

func (r *Renderer) classifyHSVRow(hsv []imageutil.HSV, row []Cell) {
	for x := range row {
		row[x] = r.classifyHSV(hsv[x])
	}
}

// classifyIndexedRow takes brightness and color from the palette entry of
// each index, not from the index value itself.
func (r *Renderer) classifyIndexedRow(f *imageutil.Frame, y int, row []Cell) {
	format := f.Format
	for x := range row {
		idx := f.IndexAt(x, y)
		if format.HasTransparent && idx == format.Transparent {
			row[x] = Cell{Glyph: r.ramp.Blank(), Class: ColorNone}
			continue
		}
		row[x] = r.classifyPixel(f.PaletteRGB(idx))
	}
}

func (r *Renderer) classifyPixel(c imageutil.RGB) Cell {
	if !r.cfg.Color {
		return Cell{Glyph: r.ramp.Glyph(c.Mean()), Class: ColorNone}
	}
	return r.classifyHSV(imageutil.ToHSV(c))
}

func (r *Renderer) classifyHSV(hsv imageutil.HSV) Cell {
	return Cell{Glyph: r.ramp.Glyph(hsv.V), Class: Classify(hsv, r.cfg.Bright)}
}

// Assemble turns a grid into terminal lines, adding left padding, color
// escapes and trailing blank lines up to the viewport height.
func (r *Renderer) Assemble(g *Grid) *RenderedFrame {
	lines := make([]string, 0, max(g.Dims.Height, r.cfg.MaxHeight))
	var sb strings.Builder
	for _, row := range g.Cells {
		sb.Reset()
		assembleRow(&sb, row, g.Dims.LeftPadding, r.ramp.Blank(), r.cfg.Color)
		lines = append(lines, sb.String())
	}
	for len(lines) < r.cfg.MaxHeight {
		lines = append(lines, "")
	}
	return &RenderedFrame{
		Lines: lines,
		Clear: r.shouldClear(g.Dims),
		Reset: r.cfg.Color,
		Grid:  g,
	}
}

func (r *Renderer) shouldClear(dims Dimensions) bool {
	switch r.cfg.Clear {
	case ClearAlways:
		return true
	case ClearWhenSmaller:
		return dims.Height < r.cfg.MaxHeight
	default:
		return false
	}
}

// Render runs the whole conversion of one frame. With debug enabled the
// conversion time is appended as a trailer; the lines are identical either
// way.
func (r *Renderer) Render(f *imageutil.Frame, dims Dimensions) *RenderedFrame {
	t := NewTimer(r.clock)
	grid := r.Classify(f, dims)
	t.End("convert")
	out := r.Assemble(grid)
	t.End("assemble")
	if r.cfg.Debug {
		out.Trailer = r.debugTrailer(t, dims)
	}
	return out
}

// RenderImage fits f with the still image geometry and renders it.
func (r *Renderer) RenderImage(f *imageutil.Frame) (*RenderedFrame, error) {
	if f.Empty() {
		return nil, &GeometryError{}
	}
	dims, err := Fit(f.Width(), f.Height(), r.cfg.Viewport(), ModeImage)
	if err != nil {
		return nil, err
	}
	return r.Render(f, dims), nil
}

func (r *Renderer) debugTrailer(t *Timer, dims Dimensions) string {
	potential := 0.0
	if total := t.Total(); total > 0 {
		potential = 1 / total.Seconds()
	}
	return fmt.Sprintf("%spotential fps: %.1f output_x: %d output_y: %d COLOR: %t\t",
		t, potential, dims.Width, dims.Height, r.cfg.Color)
}
