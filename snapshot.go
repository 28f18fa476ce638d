package ansiplay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/wbrown/ansiplay/imageutil"
)

// DefaultFontSize is the snapshot font size in points at 72 DPI.
const DefaultFontSize = 12

// FontAtlas holds anti-aliased coverage masks for the glyphs of a ramp,
// all of one character cell size.
type FontAtlas struct {
	CellWidth  int
	CellHeight int
	masks      map[rune]*image.Alpha
}

// NewFontAtlas rasterizes every glyph of ramp with ttf at size points.
func NewFontAtlas(ttf *truetype.Font, size float64, ramp Ramp) *FontAtlas {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	metrics := face.Metrics()
	advance, ok := face.GlyphAdvance('M')
	if !ok {
		advance = fixed.I(int(size))
	}
	a := &FontAtlas{
		CellWidth:  max(advance.Ceil(), 1),
		CellHeight: max((metrics.Ascent + metrics.Descent).Ceil(), 1),
		masks:      make(map[rune]*image.Alpha, len(ramp)),
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(size)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)
	baseline := metrics.Ascent.Ceil()
	for _, r := range ramp {
		mask := image.NewAlpha(image.Rect(0, 0, a.CellWidth, a.CellHeight))
		ctx.SetClip(mask.Bounds())
		ctx.SetDst(mask)
		// Glyphs missing from the font leave an empty mask.
		_, _ = ctx.DrawString(string(r), freetype.Pt(0, baseline))
		a.masks[r] = mask
	}
	return a
}

// DefaultFontAtlas rasterizes ramp with the Go Mono font.
func DefaultFontAtlas(ramp Ramp) (*FontAtlas, error) {
	ttf, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gomono: %w", err)
	}
	return NewFontAtlas(ttf, DefaultFontSize, ramp), nil
}

// Mask returns the coverage mask of r, or nil when r is not in the atlas.
func (a *FontAtlas) Mask(r rune) *image.Alpha {
	return a.masks[r]
}

// RenderGrid paints a grid as a terminal would show it: glyphs drawn in
// their class color over a black background, preceded by the grid's left
// padding.
func (a *FontAtlas) RenderGrid(g *Grid) *image.RGBA {
	cols := g.Dims.LeftPadding + g.Dims.Width
	img := image.NewRGBA(image.Rect(0, 0, cols*a.CellWidth, len(g.Cells)*a.CellHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for y, row := range g.Cells {
		for x, cell := range row {
			mask := a.masks[cell.Glyph]
			if mask == nil {
				continue
			}
			cx := (g.Dims.LeftPadding + x) * a.CellWidth
			cy := y * a.CellHeight
			dst := image.Rect(cx, cy, cx+a.CellWidth, cy+a.CellHeight)
			src := image.NewUniform(cell.Class.RGB().ToColor())
			draw.DrawMask(img, dst, src, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}
	return img
}

// SaveSnapshot writes the grid of a rendered frame to a PNG file.
func (a *FontAtlas) SaveSnapshot(f *RenderedFrame, path string) error {
	if f.Grid == nil {
		return fmt.Errorf("frame has no grid")
	}
	return imageutil.SavePNG(a.RenderGrid(f.Grid), path)
}
