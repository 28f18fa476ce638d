package video

import (
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/wbrown/ansiplay/imageutil"
)

// Capture is a video file opened with OpenCV. Frames are read in order;
// Next returns io.EOF after the last one.
type Capture struct {
	path    string
	vc      *gocv.VideoCapture
	mat     gocv.Mat
	resized gocv.Mat
	logger  *zap.SugaredLogger

	fps    float64
	frames int
	width  int
	height int

	outWidth  int
	outHeight int
}

// Option is a functional option for configuring a Capture.
type Option func(*Capture)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Capture) {
		c.logger = l
	}
}

// Open opens the video at path and reads its stream properties.
func Open(path string, opts ...Option) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video: %s", path)
	}
	c := &Capture{
		path:    path,
		vc:      vc,
		mat:     gocv.NewMat(),
		resized: gocv.NewMat(),
		logger:  zap.NewNop().Sugar(),
		fps:     vc.Get(gocv.VideoCaptureFPS),
		frames:  int(vc.Get(gocv.VideoCaptureFrameCount)),
		width:   int(vc.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Debugw("Opened video",
		"file", path,
		"fps", c.fps,
		"frames", c.frames,
		"width", c.width,
		"height", c.height)
	return c, nil
}

// Name returns the path of the video.
func (c *Capture) Name() string { return c.path }

// FPS returns the native frame rate.
func (c *Capture) FPS() float64 { return c.fps }

// FrameCount returns the frame count reported by the container.
func (c *Capture) FrameCount() int { return c.frames }

// Size returns the native frame size.
func (c *Capture) Size() (int, int) { return c.width, c.height }

// SetOutputSize makes Next resize every frame with nearest neighbor
// sampling before conversion. Zero sizes disable resizing.
func (c *Capture) SetOutputSize(width, height int) {
	c.outWidth, c.outHeight = width, height
}

// Next decodes the next frame.
func (c *Capture) Next() (*imageutil.Frame, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, io.EOF
	}
	src := c.mat
	if c.outWidth > 0 && c.outHeight > 0 &&
		(c.outWidth != src.Cols() || c.outHeight != src.Rows()) {
		gocv.Resize(src, &c.resized, image.Point{X: c.outWidth, Y: c.outHeight},
			0, 0, gocv.InterpolationNearestNeighbor)
		src = c.resized
	}
	return MatToFrame(src)
}

// Close releases the decoder.
func (c *Capture) Close() error {
	c.mat.Close()
	c.resized.Close()
	return c.vc.Close()
}

// MatToFrame converts an 8-bit BGR, BGRA or grayscale Mat to an RGB frame.
func MatToFrame(m gocv.Mat) (*imageutil.Frame, error) {
	switch m.Type() {
	case gocv.MatTypeCV8UC3:
		return FrameFromBGR(m.ToBytes(), m.Cols(), m.Rows(), 3)
	case gocv.MatTypeCV8UC4:
		return FrameFromBGR(m.ToBytes(), m.Cols(), m.Rows(), 4)
	case gocv.MatTypeCV8UC1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(m, &bgr, gocv.ColorGrayToBGR)
		return FrameFromBGR(bgr.ToBytes(), bgr.Cols(), bgr.Rows(), 3)
	}
	return nil, fmt.Errorf("unsupported mat type %v", m.Type())
}
