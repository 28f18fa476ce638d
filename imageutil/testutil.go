package imageutil

import (
	"image"
	"image/color"
)

// CreateGradientImage creates a horizontal gray gradient test image.
func CreateGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(width-1, 1))
			img.SetRGB(x, y, RGB{R: v, G: v, B: v})
		}
	}
	return img
}

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, c RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, c)
		}
	}
	return img
}

// ColorBars are the pure colors drawn by CreateColorBarsImage, left to right.
var ColorBars = []RGB{
	{255, 255, 255}, // White
	{255, 255, 0},   // Yellow
	{0, 255, 255},   // Cyan
	{0, 255, 0},     // Green
	{255, 0, 255},   // Magenta
	{255, 0, 0},     // Red
	{0, 0, 255},     // Blue
	{0, 0, 0},       // Black
}

// CreateColorBarsImage creates a color bars test pattern.
func CreateColorBarsImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	barWidth := max(width/len(ColorBars), 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := min(x/barWidth, len(ColorBars)-1)
			img.SetRGB(x, y, ColorBars[colorIdx])
		}
	}
	return img
}

// GrayPalette returns a 256 entry gray palette whose entry transparent, if
// in range, is fully transparent.
func GrayPalette(transparent int) color.Palette {
	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = color.RGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 255}
	}
	if transparent >= 0 && transparent < len(pal) {
		pal[transparent] = color.RGBA{}
	}
	return pal
}

// CreatePalettedImage creates a paletted image where every pixel holds
// index fn(x, y).
func CreatePalettedImage(width, height int, pal color.Palette, fn func(x, y int) uint8) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, width, height), pal)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x] = fn(x, y)
		}
	}
	return img
}
