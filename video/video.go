// Package video decodes video files into frames for playback.
package video

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wbrown/ansiplay/imageutil"
)

var videoExtensions = map[string]bool{
	"mp4":  true,
	"mkv":  true,
	"avi":  true,
	"mov":  true,
	"webm": true,
}

// IsVideoExt reports whether ext (without the dot, any case) names a
// supported video container.
func IsVideoExt(ext string) bool {
	return videoExtensions[strings.ToLower(ext)]
}

// IsVideoPath reports whether path has a supported video extension.
func IsVideoPath(path string) bool {
	return IsVideoExt(strings.TrimPrefix(filepath.Ext(path), "."))
}

// FrameFromBGR converts packed 8-bit BGR or BGRA pixels, as produced by
// OpenCV, to an RGB frame.
func FrameFromBGR(data []byte, width, height, channels int) (*imageutil.Frame, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if len(data) < width*height*channels {
		return nil, fmt.Errorf("short pixel buffer: got %d bytes for %dx%dx%d", len(data), width, height, channels)
	}
	img := imageutil.NewRGBAImage(width, height)
	pix := img.Pix
	for i, j := 0, 0; i < width*height*channels; i, j = i+channels, j+4 {
		pix[j] = data[i+2]
		pix[j+1] = data[i+1]
		pix[j+2] = data[i]
		pix[j+3] = 255
	}
	return imageutil.NewRGBFrame(img), nil
}
