package ansiplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wbrown/ansiplay/imageutil"
)

// FrameSource is a decoded video stream. Next returns io.EOF once the
// stream is exhausted; any other error is a decode failure.
type FrameSource interface {
	Next() (*imageutil.Frame, error)
	// FPS is the native frame rate of the stream.
	FPS() float64
	// FrameCount is the total number of frames reported by the container.
	FrameCount() int
	// Size is the native frame size in pixels.
	Size() (width, height int)
	Close() error
}

// OutputSizer is implemented by sources that can resize frames during
// decoding. The player uses it in fast mode.
type OutputSizer interface {
	SetOutputSize(width, height int)
}

// Namer is implemented by sources that know the file they decode.
type Namer interface {
	Name() string
}

// State is the lifecycle of one video playback.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats summarizes a finished playback.
type Stats struct {
	Rendered int
	Dropped  int
	Elapsed  time.Duration
}

// Player paces rendered frames onto an output stream. It is not safe for
// concurrent use; each playback owns its own clock state.
type Player struct {
	cfg      Config
	out      io.Writer
	renderer *Renderer
	clock    Clock
	logger   *zap.SugaredLogger
	state    State
}

// PlayerOption is a functional option for configuring a Player.
type PlayerOption func(*Player)

// WithClock sets the time source used for pacing.
func WithClock(c Clock) PlayerOption {
	return func(p *Player) {
		p.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) PlayerOption {
	return func(p *Player) {
		p.logger = l
	}
}

// WithRenderer replaces the renderer built from the player config.
func WithRenderer(r *Renderer) PlayerOption {
	return func(p *Player) {
		p.renderer = r
	}
}

// NewPlayer creates a Player writing to out.
func NewPlayer(cfg Config, out io.Writer, opts ...PlayerOption) *Player {
	p := &Player{
		cfg:    cfg,
		out:    out,
		clock:  SystemClock{},
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRenderer(cfg, WithRendererClock(p.clock), WithRendererLogger(p.logger))
	}
	return p
}

// State returns the state of the current or last playback.
func (p *Player) State() State {
	return p.state
}

// Renderer returns the renderer used for every frame.
func (p *Player) Renderer() *Renderer {
	return p.renderer
}

// Show renders a still frame once.
func (p *Player) Show(f *imageutil.Frame) error {
	rf, err := p.renderer.RenderImage(f)
	if err != nil {
		return err
	}
	return WriteFrame(p.out, rf)
}

// Loop displays an animation at the configured animation rate until ctx
// is done, which is reported as ctx.Err().
func (p *Player) Loop(ctx context.Context, anim *Animation, name string) error {
	budget := p.cfg.AnimationBudget()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frameStart := p.clock.Now()
		f, err := anim.Next()
		if err != nil {
			return &DecodeError{Path: name, Err: err}
		}
		if err := p.Show(f); err != nil {
			return err
		}
		took := p.clock.Now().Sub(frameStart)
		if err := p.clock.Sleep(ctx, max(0, budget-took)); err != nil {
			return err
		}
	}
}

// Play drives src at its native frame rate. Frames that arrive after
// their scheduled display moment are dropped without sleeping; rendered
// frames are followed by a sleep filling the rest of the display frame
// budget. The source is closed when playback ends.
func (p *Player) Play(ctx context.Context, src FrameSource) (stats Stats, err error) {
	name := ""
	if n, ok := src.(Namer); ok {
		name = n.Name()
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, cerr)
		}
		p.state = StateFinished
	}()

	p.state = StateIdle
	fps := src.FPS()
	if fps <= 0 || math.IsNaN(fps) {
		return stats, &DecodeError{Path: name, Err: fmt.Errorf("invalid frame rate %v", fps)}
	}
	width, height := src.Size()
	mode := ModeImage
	if p.cfg.Fast {
		mode = ModeVideo
	}
	dims, err := Fit(width, height, p.cfg.Viewport(), mode)
	if err != nil {
		return stats, err
	}
	if sizer, ok := src.(OutputSizer); ok && p.cfg.Fast {
		sizer.SetOutputSize(dims.Width, dims.Height)
	}

	var duration time.Duration
	if n := src.FrameCount(); n > 0 {
		duration = time.Duration(float64(n) / fps * float64(time.Second))
	}
	p.logger.Debugw("Starting playback",
		"file", name,
		"fps", fps,
		"frames", src.FrameCount(),
		"output_x", dims.Width,
		"output_y", dims.Height)

	budget := p.cfg.FrameBudget()
	start := p.clock.Now()
	lastRendered := start
	current := 0
	p.state = StatePlaying
	for {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = p.clock.Now().Sub(start)
			return stats, err
		}
		frameStart := p.clock.Now()
		f, err := src.Next()
		current++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Elapsed = p.clock.Now().Sub(start)
			return stats, &DecodeError{Path: name, Err: err}
		}

		elapsed := frameStart.Sub(start)
		shouldBe := int(math.Round(elapsed.Seconds() * fps))
		if current < shouldBe {
			stats.Dropped++
			continue
		}

		if mode == ModeImage {
			dims, err = Fit(f.Width(), f.Height(), p.cfg.Viewport(), ModeImage)
			if err != nil {
				return stats, err
			}
		}
		rf := p.renderer.Render(f, dims)
		if p.cfg.Debug {
			now := p.clock.Now()
			rf.Trailer += videoTrailer(now.Sub(lastRendered), current, shouldBe, elapsed, duration)
			lastRendered = now
		}
		if err := WriteFrame(p.out, rf); err != nil {
			return stats, err
		}
		stats.Rendered++

		took := p.clock.Now().Sub(frameStart)
		if err := p.clock.Sleep(ctx, max(0, budget-took)); err != nil {
			stats.Elapsed = p.clock.Now().Sub(start)
			return stats, err
		}
	}

	stats.Elapsed = p.clock.Now().Sub(start)
	p.logger.Debugw("Playback finished",
		"file", name,
		"rendered", stats.Rendered,
		"dropped", stats.Dropped,
		"elapsed", stats.Elapsed)
	_, err = io.WriteString(p.out, "\n")
	return stats, err
}

func videoTrailer(frametime time.Duration, current, shouldBe int, elapsed, duration time.Duration) string {
	actual := 0.0
	if frametime > 0 {
		actual = 1 / frametime.Seconds()
	}
	progress := 0.0
	if duration > 0 {
		progress = elapsed.Seconds() / duration.Seconds() * 100
	}
	return fmt.Sprintf("actual frametime: %.3fs\tactual fps %.1f\tcurrent_frame %d\tshould_be_at %d\tvideo progress %% %.1f",
		frametime.Seconds(), actual, current, shouldBe, progress)
}
