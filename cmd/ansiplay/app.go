package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/ansiplay"
	"github.com/wbrown/ansiplay/fetch"
	"github.com/wbrown/ansiplay/imageutil"
	"github.com/wbrown/ansiplay/video"
)

// app holds everything a single invocation needs. Tests replace the
// collaborators to run without a network or OpenCV.
type app struct {
	stdout io.Writer
	stderr io.Writer

	clock        ansiplay.Clock
	fetchOptions []fetch.Option
	openVideo    func(path string, logger *zap.SugaredLogger) (ansiplay.FrameSource, error)

	// flag values
	configPath string
	snapshot   string
	cacheDir   string
	clear      string
	cfg        ansiplay.Config

	logger *zap.SugaredLogger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		clock:  ansiplay.SystemClock{},
		openVideo: func(path string, logger *zap.SugaredLogger) (ansiplay.FrameSource, error) {
			return video.Open(path, video.WithLogger(logger))
		},
		cfg:    ansiplay.DefaultConfig(),
		logger: zap.NewNop().Sugar(),
	}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ansiplay <file|url> [color] [fast] [debug]",
		Short: "Play images, GIFs and videos as character art in the terminal",
		Long: `Plays a still image, an animated GIF or a video as character art.
The input may be a local file, a link to a media file or a hosted video
page. The words color, fast and debug after the input are accepted as
shorthands for the matching flags.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.run,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	defaults := ansiplay.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&a.configPath, "config", "", "YAML file with playback options")
	flags.BoolVarP(&a.cfg.Color, "color", "c", defaults.Color, "enable color output")
	flags.BoolVarP(&a.cfg.Fast, "fast", "f", defaults.Fast, "use the streaming video pipeline")
	flags.BoolVarP(&a.cfg.Debug, "debug", "d", defaults.Debug, "append timing diagnostics to every frame")
	flags.BoolVar(&a.cfg.Bright, "bright", defaults.Bright, "split colors into normal and bright variants")
	flags.IntVar(&a.cfg.MaxWidth, "width", defaults.MaxWidth, "maximum output width in characters")
	flags.IntVar(&a.cfg.MaxHeight, "height", defaults.MaxHeight, "maximum output height in characters")
	flags.Float64Var(&a.cfg.TargetFPS, "fps", defaults.TargetFPS, "display rate of video playback")
	flags.Float64Var(&a.cfg.AnimationFPS, "animation-fps", defaults.AnimationFPS, "display rate of animated images")
	flags.StringVar(&a.clear, "clear", defaults.Clear.String(), "screen clear policy: always, smaller or never")
	flags.StringVar(&a.cfg.Ramp, "ramp", defaults.Ramp, "glyphs from lightest to densest")
	flags.StringVar(&a.snapshot, "snapshot", "", "write the first frame to this PNG file instead of playing")
	flags.StringVar(&a.cacheDir, "cache-dir", ".", "directory for downloaded media")
	return cmd
}

// execute runs the command and maps its outcome to an exit status.
func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.command()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	_ = a.logger.Sync()
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	fmt.Fprintln(a.stderr, err)
	return 1
}

// loadConfig layers the YAML file under the flags that were set
// explicitly.
func (a *app) loadConfig(cmd *cobra.Command) (ansiplay.Config, error) {
	cfg := ansiplay.DefaultConfig()
	if a.configPath != "" {
		data, err := os.ReadFile(a.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", a.configPath, err)
		}
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("color", func() { cfg.Color = a.cfg.Color })
	set("fast", func() { cfg.Fast = a.cfg.Fast })
	set("debug", func() { cfg.Debug = a.cfg.Debug })
	set("bright", func() { cfg.Bright = a.cfg.Bright })
	set("width", func() { cfg.MaxWidth = a.cfg.MaxWidth })
	set("height", func() { cfg.MaxHeight = a.cfg.MaxHeight })
	set("fps", func() { cfg.TargetFPS = a.cfg.TargetFPS })
	set("animation-fps", func() { cfg.AnimationFPS = a.cfg.AnimationFPS })
	set("ramp", func() { cfg.Ramp = a.cfg.Ramp })
	if flags.Changed("clear") {
		p, err := ansiplay.ParseClearPolicy(a.clear)
		if err != nil {
			return cfg, err
		}
		cfg.Clear = p
	}
	return cfg, nil
}

// applyWords handles the positional shorthands after the input.
func applyWords(cfg *ansiplay.Config, words []string) error {
	for _, w := range words {
		switch strings.ToLower(w) {
		case "color":
			cfg.Color = true
		case "fast":
			cfg.Fast = true
		case "debug":
			cfg.Debug = true
		case "bright":
			cfg.Bright = true
		default:
			return fmt.Errorf("unknown option %q (options: color, fast, debug, bright)", w)
		}
	}
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stdout, "No arguments given!")
		return nil
	}
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyWords(&cfg, args[1:]); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.logger = newLogger(cfg.Debug, a.stderr).With("session", uuid.NewString())
	a.logger.Debugw("Starting", "input", args[0], "config", cfg)

	p := &playback{
		app:     a,
		cfg:     cfg,
		fetcher: a.newFetcher(),
	}
	if a.snapshot == "" {
		restore, err := setupTerminal(a.stdout)
		if err != nil {
			a.logger.Warnw("Terminal setup failed", "error", err)
		}
		defer restore()
	}
	return p.play(cmd.Context(), args[0])
}

func (a *app) newFetcher() *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithDir(a.cacheDir),
		fetch.WithStatus(a.stdout),
		fetch.WithLogger(a.logger),
	}
	return fetch.New(append(opts, a.fetchOptions...)...)
}

// playback dispatches one input to the still, animation or video path.
type playback struct {
	*app
	cfg     ansiplay.Config
	fetcher *fetch.Fetcher
}

func (p *playback) player() *ansiplay.Player {
	return ansiplay.NewPlayer(p.cfg, p.stdout,
		ansiplay.WithClock(p.clock),
		ansiplay.WithLogger(p.logger))
}

func (p *playback) play(ctx context.Context, input string) error {
	switch {
	case fetch.IsHostedVideo(input):
		return p.playHosted(ctx, input)
	case fetch.IsURL(input):
		ext := fetch.URLExt(input)
		if !imageutil.IsImageExt(ext) && !video.IsVideoExt(ext) {
			return p.unsupported(&ansiplay.UnsupportedFormatError{Path: input, Ext: ext})
		}
		path, err := p.fetcher.Download(ctx, input)
		if err != nil {
			return err
		}
		defer os.Remove(path)
		return p.playFile(ctx, path)
	default:
		return p.playFile(ctx, input)
	}
}

// playHosted shows the thumbnail while the video downloads. A thumbnail
// that cannot be fetched or decoded is skipped; a failed video download is
// fatal.
func (p *playback) playHosted(ctx context.Context, link string) error {
	hv, err := p.fetcher.Lookup(ctx, link)
	if err != nil {
		return err
	}
	if !hv.Cached() && p.snapshot == "" {
		thumb := p.fetcher.Thumbnail(ctx, hv.ThumbnailURL)
		switch {
		case thumb.OK():
			if err := p.showStill(thumb.Path); err != nil {
				p.logger.Debugw("Skipping undecodable thumbnail", "error", err)
			}
			os.Remove(thumb.Path)
		case !thumb.Absorbed():
			return thumb.Err
		default:
			p.logger.Debugw("Skipping thumbnail", "error", thumb.Err)
		}
	}
	if err := p.fetcher.DownloadVideo(ctx, hv); err != nil {
		return err
	}
	return p.playVideo(ctx, hv.CachePath)
}

func (p *playback) playFile(ctx context.Context, path string) error {
	ext := imageutil.Ext(path)
	switch {
	case ext == "gif":
		return p.playGIF(ctx, path)
	case imageutil.IsImageExt(ext):
		return p.showStill(path)
	case video.IsVideoExt(ext):
		return p.playVideo(ctx, path)
	}
	return p.unsupported(&ansiplay.UnsupportedFormatError{Path: path, Ext: ext})
}

func (p *playback) unsupported(err *ansiplay.UnsupportedFormatError) error {
	fmt.Fprintln(p.stdout, err.Error())
	return nil
}

func (p *playback) showStill(path string) error {
	f, _, err := imageutil.LoadFrame(path)
	if err != nil {
		return &ansiplay.DecodeError{Path: path, Err: err}
	}
	if p.snapshot != "" {
		return p.saveSnapshot(f)
	}
	return p.player().Show(f)
}

func (p *playback) playGIF(ctx context.Context, path string) error {
	seeker, err := imageutil.OpenGIF(path)
	if err != nil {
		return &ansiplay.DecodeError{Path: path, Err: err}
	}
	anim := ansiplay.NewAnimation(seeker)
	if p.snapshot != "" || seeker.Len() == 1 {
		f, err := anim.Next()
		if err != nil {
			return &ansiplay.DecodeError{Path: path, Err: err}
		}
		if p.snapshot != "" {
			return p.saveSnapshot(f)
		}
		return p.player().Show(f)
	}
	p.logger.Debugw("Looping animation", "file", path, "frames", seeker.Len())
	return p.player().Loop(ctx, anim, path)
}

func (p *playback) playVideo(ctx context.Context, path string) error {
	src, err := p.openVideo(path, p.logger)
	if err != nil {
		return &ansiplay.DecodeError{Path: path, Err: err}
	}
	if p.snapshot != "" {
		defer src.Close()
		f, err := src.Next()
		if err != nil {
			return &ansiplay.DecodeError{Path: path, Err: err}
		}
		return p.saveSnapshot(f)
	}
	stats, err := p.player().Play(ctx, src)
	p.logger.Debugw("Video done", "rendered", stats.Rendered, "dropped", stats.Dropped, "elapsed", stats.Elapsed)
	return err
}

func (p *playback) saveSnapshot(f *imageutil.Frame) error {
	r := ansiplay.NewRenderer(p.cfg, ansiplay.WithRendererLogger(p.logger))
	out, err := r.RenderImage(f)
	if err != nil {
		return err
	}
	atlas, err := ansiplay.DefaultFontAtlas(r.Ramp())
	if err != nil {
		return err
	}
	if err := atlas.SaveSnapshot(out, p.snapshot); err != nil {
		return err
	}
	p.logger.Debugw("Saved snapshot", "file", p.snapshot)
	return nil
}
