package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

// ErrFrameOutOfRange is returned by a frame seeker asked for an index past
// the last frame of its container.
var ErrFrameOutOfRange = errors.New("frame index out of range")

// GIFSeeker gives random access to the composited frames of an animated
// GIF. Frames are composited onto a canvas of the logical screen size so
// that every frame has the same dimensions and palette.
type GIFSeeker struct {
	frames []*image.Paletted
	format Format
}

// OpenGIF decodes every frame of the GIF at path.
func OpenGIF(path string) (*GIFSeeker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gif: %w", err)
	}
	defer f.Close()
	return DecodeGIF(f)
}

// DecodeGIF decodes and composites an animated GIF from r.
func DecodeGIF(r io.Reader) (*GIFSeeker, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, errors.New("gif has no frames")
	}
	return NewGIFSeeker(composite(g)), nil
}

// NewGIFSeeker wraps already composited frames, all sharing one palette.
// The format, transparency index included, is taken from the first frame
// and stamped on every frame the seeker returns.
func NewGIFSeeker(frames []*image.Paletted) *GIFSeeker {
	s := &GIFSeeker{frames: frames, format: IndexedFormat(-1)}
	if len(frames) > 0 {
		s.format = IndexedFormat(TransparentIndex(frames[0].Palette))
	}
	return s
}

// FrameAt returns frame index, or ErrFrameOutOfRange past the end.
func (s *GIFSeeker) FrameAt(index int) (*Frame, error) {
	if index < 0 || index >= len(s.frames) {
		return nil, fmt.Errorf("gif frame %d: %w", index, ErrFrameOutOfRange)
	}
	return NewIndexedFrame(s.frames[index], s.format), nil
}

// Format returns the format shared by all frames.
func (s *GIFSeeker) Format() Format {
	return s.format
}

// Len returns the number of frames.
func (s *GIFSeeker) Len() int {
	return len(s.frames)
}

func composite(g *gif.GIF) []*image.Paletted {
	first := g.Image[0]
	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		width, height = first.Rect.Max.X, first.Rect.Max.Y
	}
	// The first frame's palette already has the transparency entry applied
	// by the decoder, unlike the global color table.
	pal := first.Palette

	fill := uint8(g.BackgroundIndex)
	if t := TransparentIndex(pal); t >= 0 {
		fill = uint8(t)
	}

	canvas := image.NewPaletted(image.Rect(0, 0, width, height), pal)
	for i := range canvas.Pix {
		canvas.Pix[i] = fill
	}

	out := make([]*image.Paletted, 0, len(g.Image))
	for i, fr := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved []uint8
		if disposal == gif.DisposalPrevious {
			saved = append([]uint8(nil), canvas.Pix...)
		}

		drawFrame(canvas, fr)
		snapshot := image.NewPaletted(canvas.Rect, canvas.Palette)
		copy(snapshot.Pix, canvas.Pix)
		out = append(out, snapshot)

		switch disposal {
		case gif.DisposalBackground:
			r := fr.Rect.Intersect(canvas.Rect)
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					canvas.Pix[canvas.PixOffset(x, y)] = fill
				}
			}
		case gif.DisposalPrevious:
			copy(canvas.Pix, saved)
		}
	}
	return out
}

// drawFrame paints the opaque pixels of fr onto canvas, translating
// indices when the frame carries its own local palette.
func drawFrame(canvas, fr *image.Paletted) {
	same := samePalette(canvas.Palette, fr.Palette)
	transparent := TransparentIndex(fr.Palette)
	r := fr.Rect.Intersect(canvas.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			idx := fr.Pix[fr.PixOffset(x, y)]
			if int(idx) == transparent {
				continue
			}
			if !same {
				if int(idx) >= len(fr.Palette) {
					continue
				}
				idx = uint8(canvas.Palette.Index(fr.Palette[idx]))
			}
			canvas.Pix[canvas.PixOffset(x, y)] = idx
		}
	}
}

func samePalette(a, b color.Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
