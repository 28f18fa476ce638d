package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationLinear uses bilinear interpolation. It is the still
	// image default.
	InterpolationLinear Interpolation = iota

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality; used for streaming video.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	interp.scaler().Scale(dst.RGBA, dst.Bounds(), img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeFrame resamples a frame to width x height. A frame that already
// has the requested size is returned as is. Indexed frames are always
// resampled by nearest neighbor so that palette indices, and with them the
// transparency index, survive unchanged.
func ResizeFrame(f *Frame, width, height int, interp Interpolation) *Frame {
	if f.Width() == width && f.Height() == height {
		return f
	}
	if f.Format.Kind == KindIndexed {
		return &Frame{Format: f.Format, Indexed: resizeIndexed(f.Indexed, width, height)}
	}
	return &Frame{Format: f.Format, RGB: Resize(f.RGB, width, height, interp)}
}

func resizeIndexed(src *image.Paletted, width, height int) *image.Paletted {
	dst := image.NewPaletted(image.Rect(0, 0, width, height), src.Palette)
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < height; y++ {
		sy := y * sh / height
		srow := src.Pix[sy*src.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			drow[x] = srow[x*sw/width]
		}
	}
	return dst
}
