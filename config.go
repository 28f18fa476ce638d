package ansiplay

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ClearPolicy decides when a rendered frame is preceded by a full screen
// clear.
type ClearPolicy int

const (
	// ClearAlways clears before every frame.
	ClearAlways ClearPolicy = iota
	// ClearWhenSmaller clears only when the frame is shorter than the
	// viewport, so stale rows of a taller previous frame disappear.
	ClearWhenSmaller
	// ClearNever never clears; frames scroll.
	ClearNever
)

var clearPolicyNames = map[ClearPolicy]string{
	ClearAlways:      "always",
	ClearWhenSmaller: "smaller",
	ClearNever:       "never",
}

func (p ClearPolicy) String() string {
	if name, ok := clearPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ClearPolicy(%d)", int(p))
}

// ParseClearPolicy parses "always", "smaller" or "never".
func ParseClearPolicy(s string) (ClearPolicy, error) {
	for p, name := range clearPolicyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown clear policy %q (options: always, smaller, never)", s)
}

// UnmarshalText lets the policy be read from config files and flags.
func (p *ClearPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseClearPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p ClearPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Config holds every option of a playback. It is read once at startup and
// passed by value; components never modify it.
type Config struct {
	// Color enables color classification and escape emission.
	Color bool `yaml:"color"`
	// Fast selects the streaming video pipeline (decoder-side resize,
	// nearest neighbor resampling, video geometry).
	Fast bool `yaml:"fast"`
	// Debug appends timing diagnostics after each frame.
	Debug bool `yaml:"debug"`
	// Bright splits each hue class into normal and bright variants.
	Bright bool `yaml:"bright"`

	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`

	// TargetFPS is the display rate of video playback.
	TargetFPS float64 `yaml:"target_fps"`
	// AnimationFPS is the display rate of animated images.
	AnimationFPS float64 `yaml:"animation_fps"`

	Clear ClearPolicy `yaml:"clear"`
	Ramp  string      `yaml:"ramp"`
}

const (
	DefaultMaxWidth  = 315
	DefaultMaxHeight = 80
	DefaultFrameRate = 20
	DefaultRamp      = " .:-=+*#%@"
)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MaxWidth:     DefaultMaxWidth,
		MaxHeight:    DefaultMaxHeight,
		TargetFPS:    DefaultFrameRate,
		AnimationFPS: DefaultFrameRate,
		Clear:        ClearAlways,
		Ramp:         DefaultRamp,
	}
}

// Validate reports every invalid option.
func (c Config) Validate() error {
	var errs []error
	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.MaxWidth, c.MaxHeight))
	}
	if c.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("target_fps must be positive, got %v", c.TargetFPS))
	}
	if c.AnimationFPS <= 0 {
		errs = append(errs, fmt.Errorf("animation_fps must be positive, got %v", c.AnimationFPS))
	}
	if len([]rune(c.Ramp)) < 2 {
		errs = append(errs, fmt.Errorf("ramp needs at least 2 glyphs, got %q", c.Ramp))
	}
	if _, ok := clearPolicyNames[c.Clear]; !ok {
		errs = append(errs, fmt.Errorf("invalid clear policy %d", int(c.Clear)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Viewport returns the configured viewport limits.
func (c Config) Viewport() Viewport {
	return Viewport{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// FrameBudget returns the time slot of one displayed video frame.
func (c Config) FrameBudget() time.Duration {
	return time.Duration(float64(time.Second) / c.TargetFPS)
}

// AnimationBudget returns the time slot of one animation frame.
func (c Config) AnimationBudget() time.Duration {
	return time.Duration(float64(time.Second) / c.AnimationFPS)
}
