package ansiplay

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat matches every *UnsupportedFormatError and
// *GeometryError with errors.Is.
var ErrUnsupportedFormat = errors.New("unsupported format")

// DecodeError reports unreadable or corrupt media. It stops playback.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError reports a failed remote acquisition.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an input whose extension is not
// recognized.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Not sure what to do with %s files", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// GeometryError reports a zero-sized source or viewport that cannot be
// scaled.
type GeometryError struct {
	Width, Height int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("cannot scale degenerate size %dx%d", e.Width, e.Height)
}

func (e *GeometryError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
