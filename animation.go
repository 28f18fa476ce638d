package ansiplay

import (
	"errors"

	"github.com/wbrown/ansiplay/imageutil"
)

// FrameSeeker gives random access to the frames of a multi-frame still
// image. FrameAt returns an error wrapping imageutil.ErrFrameOutOfRange
// for an index past the last frame; the seeker is the only source of
// truth for the frame count.
type FrameSeeker interface {
	FrameAt(index int) (*imageutil.Frame, error)
}

// Animation is an endless iterator over a FrameSeeker. It wraps back to
// frame 0 when the seeker reports an out of range index.
type Animation struct {
	seeker FrameSeeker
	index  int
	format *imageutil.Format
}

// NewAnimation returns an iterator positioned at frame 0.
func NewAnimation(seeker FrameSeeker) *Animation {
	return &Animation{seeker: seeker}
}

// Next returns the next frame. The pixel format is taken from the first
// frame and applied to every later one unchecked; all frames of a seeker
// share one pixel kind.
func (a *Animation) Next() (*imageutil.Frame, error) {
	f, err := a.seeker.FrameAt(a.index)
	if errors.Is(err, imageutil.ErrFrameOutOfRange) && a.index > 0 {
		a.index = 0
		f, err = a.seeker.FrameAt(0)
	}
	if err != nil {
		return nil, err
	}
	a.index++

	if a.format == nil {
		format := f.Format
		a.format = &format
	}
	f.Format = *a.format
	return f, nil
}

// Index returns the position the next call to Next will read.
func (a *Animation) Index() int {
	return a.index
}

// Format reports the pixel format fixed by the first frame, if any frame
// was read yet.
func (a *Animation) Format() (imageutil.Format, bool) {
	if a.format == nil {
		return imageutil.Format{}, false
	}
	return *a.format, true
}

// Reset restarts the iterator at frame 0 and forgets the pixel format.
func (a *Animation) Reset() {
	a.index = 0
	a.format = nil
}
