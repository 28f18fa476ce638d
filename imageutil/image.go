// Package imageutil provides the raster frame types shared by the
// still-image, animation and video paths, plus loading, resampling and
// color space helpers that operate on them.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to color.RGBA for use with standard library.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Mean returns the unweighted channel average, the brightness measure used
// when color classification is disabled.
func (rgb RGB) Mean() uint8 {
	return uint8((int(rgb.R) + int(rgb.G) + int(rgb.B)) / 3)
}

// RGBFromColor converts a color.Color to RGB.
func RGBFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to RGBAImage. The result
// always starts at the origin.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return &RGBAImage{RGBA: rgba}
	}
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())
	draw.Draw(rgba.RGBA, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	i := img.PixOffset(x, y)
	return RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := NewRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// FormatKind tells how the pixels of a Frame are stored.
type FormatKind int

const (
	// KindRGB frames carry one RGB triple per pixel.
	KindRGB FormatKind = iota
	// KindIndexed frames carry one palette index per pixel.
	KindIndexed
)

func (k FormatKind) String() string {
	if k == KindIndexed {
		return "indexed"
	}
	return "rgb"
}

// Format is decided once per source and carried with every frame of it.
// Transparent is only meaningful when HasTransparent is set.
type Format struct {
	Kind           FormatKind
	HasTransparent bool
	Transparent    uint8
}

// RGBFormat is the format of every true-color source.
var RGBFormat = Format{Kind: KindRGB}

// IndexedFormat returns the format of a palette source with an optional
// transparency index.
func IndexedFormat(transparent int) Format {
	f := Format{Kind: KindIndexed}
	if transparent >= 0 && transparent <= 255 {
		f.HasTransparent = true
		f.Transparent = uint8(transparent)
	}
	return f
}

// Frame is one raster frame as produced by a decoding collaborator.
// Exactly one of RGB and Indexed is set, matching Format.Kind. A Frame is
// not modified after it is produced.
type Frame struct {
	Format  Format
	RGB     *RGBAImage
	Indexed *image.Paletted
}

// NewRGBFrame wraps a true-color image.
func NewRGBFrame(img *RGBAImage) *Frame {
	return &Frame{Format: RGBFormat, RGB: img}
}

// NewIndexedFrame wraps a paletted image using the given format.
func NewIndexedFrame(img *image.Paletted, format Format) *Frame {
	format.Kind = KindIndexed
	return &Frame{Format: format, Indexed: img}
}

// FrameFromImage classifies img and wraps it. Paletted images keep their
// indices and declare the first fully transparent palette entry, every
// other image is converted to RGB.
func FrameFromImage(img image.Image) *Frame {
	if p, ok := img.(*image.Paletted); ok {
		return NewIndexedFrame(normalizePaletted(p), IndexedFormat(TransparentIndex(p.Palette)))
	}
	return NewRGBFrame(RGBAImageFromImage(img))
}

// TransparentIndex returns the first palette entry with zero alpha, or -1.
func TransparentIndex(p color.Palette) int {
	for i, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			return i
		}
	}
	return -1
}

// normalizePaletted moves a paletted image to the origin.
func normalizePaletted(p *image.Paletted) *image.Paletted {
	if p.Rect.Min == (image.Point{}) {
		return p
	}
	out := image.NewPaletted(image.Rect(0, 0, p.Rect.Dx(), p.Rect.Dy()), p.Palette)
	for y := 0; y < out.Rect.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+out.Rect.Dx()],
			p.Pix[p.PixOffset(p.Rect.Min.X, p.Rect.Min.Y+y):])
	}
	return out
}

// Width returns the frame width in pixels, 0 for a frame without pixels.
func (f *Frame) Width() int {
	switch {
	case f.Format.Kind == KindIndexed && f.Indexed != nil:
		return f.Indexed.Rect.Dx()
	case f.Format.Kind == KindRGB && f.RGB != nil:
		return f.RGB.Width()
	}
	return 0
}

// Height returns the frame height in pixels, 0 for a frame without pixels.
func (f *Frame) Height() int {
	switch {
	case f.Format.Kind == KindIndexed && f.Indexed != nil:
		return f.Indexed.Rect.Dy()
	case f.Format.Kind == KindRGB && f.RGB != nil:
		return f.RGB.Height()
	}
	return 0
}

// Empty reports whether the frame has no pixels.
func (f *Frame) Empty() bool {
	return f == nil || f.Width() <= 0 || f.Height() <= 0
}

// IndexAt returns the palette index at (x, y) of an indexed frame.
func (f *Frame) IndexAt(x, y int) uint8 {
	return f.Indexed.Pix[y*f.Indexed.Stride+x]
}

// PaletteRGB returns the color of palette entry i, black when the index is
// outside the palette.
func (f *Frame) PaletteRGB(i uint8) RGB {
	if int(i) >= len(f.Indexed.Palette) {
		return RGB{}
	}
	return RGBFromColor(f.Indexed.Palette[i])
}
