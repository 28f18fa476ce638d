package main

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/gif"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/wbrown/ansiplay"
	"github.com/wbrown/ansiplay/fetch"
	"github.com/wbrown/ansiplay/imageutil"
)

// instantClock never blocks; sleeping only moves its time forward.
type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time { return c.now }

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return ctx.Err()
}

type stubSource struct {
	frames int
	read   int
	closed bool
}

func (s *stubSource) Next() (*imageutil.Frame, error) {
	if s.read >= s.frames {
		return nil, io.EOF
	}
	s.read++
	return imageutil.NewRGBFrame(imageutil.CreateColorBarsImage(16, 8)), nil
}

func (s *stubSource) FPS() float64     { return 20 }
func (s *stubSource) FrameCount() int  { return s.frames }
func (s *stubSource) Size() (int, int) { return 16, 8 }

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

type stubVideoClient struct {
	video *youtube.Video
	err   error
}

func (c *stubVideoClient) GetVideoContext(ctx context.Context, url string) (*youtube.Video, error) {
	return c.video, c.err
}

func (c *stubVideoClient) GetStreamContext(ctx context.Context, v *youtube.Video, f *youtube.Format) (io.ReadCloser, int64, error) {
	return io.NopCloser(strings.NewReader("mp4")), 3, nil
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.clock = &instantClock{now: time.Unix(0, 0)}
	a.openVideo = func(string, *zap.SugaredLogger) (ansiplay.FrameSource, error) {
		return nil, errors.New("no video decoder in tests")
	}
	return a, &stdout, &stderr
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bars.png")
	if err := imageutil.SavePNG(imageutil.CreateColorBarsImage(16, 8), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNoArguments(t *testing.T) {
	t.Parallel()
	a, stdout, _ := newTestApp(t)
	if code := a.execute(context.Background(), nil); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "No arguments given!") {
		t.Errorf("Missing diagnostic, got %q", stdout.String())
	}
}

func TestUnsupportedExtension(t *testing.T) {
	t.Parallel()
	a, stdout, _ := newTestApp(t)
	if code := a.execute(context.Background(), []string{"notes.xyz"}); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if got := stdout.String(); got != "Not sure what to do with xyz files\n" {
		t.Errorf("Unexpected diagnostic %q", got)
	}
}

func TestStillImage(t *testing.T) {
	t.Parallel()
	a, stdout, stderr := newTestApp(t)
	path := writePNG(t, t.TempDir())

	code := a.execute(context.Background(), []string{"--width", "40", "--height", "10", path, "color"})
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, ansiplay.ClearScreen) {
		t.Error("Frame should start with a clear")
	}
	if strings.Count(out, "\n") != 10 {
		t.Errorf("Expected 10 lines, got %d", strings.Count(out, "\n"))
	}
	if !strings.Contains(out, ansiplay.ColorRed.Escape()) {
		t.Error("Color shorthand did not enable color")
	}
}

func TestConfigFile(t *testing.T) {
	t.Parallel()
	a, stdout, stderr := newTestApp(t)
	dir := t.TempDir()
	path := writePNG(t, dir)
	cfgPath := filepath.Join(dir, "ansiplay.yaml")
	if err := os.WriteFile(cfgPath, []byte("max_width: 40\nmax_height: 6\nclear: never\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code := a.execute(context.Background(), []string{"--config", cfgPath, "--height", "12", path})
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if strings.Contains(out, ansiplay.ClearScreen) {
		t.Error("clear: never from the config file was ignored")
	}
	// The flag overrides the file.
	if strings.Count(out, "\n") != 12 {
		t.Errorf("Expected 12 lines, got %d", strings.Count(out, "\n"))
	}
}

func TestInvalidOptions(t *testing.T) {
	t.Parallel()
	a, _, stderr := newTestApp(t)
	path := writePNG(t, t.TempDir())
	if code := a.execute(context.Background(), []string{path, "sparkly"}); code != 1 {
		t.Errorf("Expected exit 1 for unknown word, got %d", code)
	}
	a, _, _ = newTestApp(t)
	if code := a.execute(context.Background(), []string{"--width", "0", path}); code != 1 {
		t.Errorf("Expected exit 1 for zero width, got %d", code)
	}
	if stderr.Len() == 0 {
		t.Error("Expected a diagnostic on stderr")
	}
}

func TestDecodeErrorExitsNonZero(t *testing.T) {
	t.Parallel()
	a, _, stderr := newTestApp(t)
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := a.execute(context.Background(), []string{path}); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "broken.png") {
		t.Errorf("Diagnostic should name the file, got %q", stderr.String())
	}
}

func TestAnimatedGIFLoopsUntilCanceled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.gif")
	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < 3; i++ {
		g.Image = append(g.Image, imageutil.CreatePalettedImage(4, 4, pal, func(x, y int) uint8 {
			return uint8((x + i) % 2)
		}))
		g.Delay = append(g.Delay, 5)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	a, stdout, stderr := newTestApp(t)
	clock := &cancelingClock{cancel: cancel, after: 4}
	a.clock = clock

	if code := a.execute(ctx, []string{"--width", "20", "--height", "5", path}); code != 0 {
		t.Fatalf("Expected exit 0 on interrupt, got %d: %s", code, stderr.String())
	}
	if got := strings.Count(stdout.String(), ansiplay.ClearScreen); got != 4 {
		t.Errorf("Expected 4 frames before cancel, got %d", got)
	}
}

type cancelingClock struct {
	instantClock
	cancel context.CancelFunc
	after  int
	sleeps int
}

func (c *cancelingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	if c.sleeps >= c.after {
		c.cancel()
	}
	return c.instantClock.Sleep(ctx, d)
}

func TestPrimaryDownloadFailureExitsNonZero(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a, _, _ := newTestApp(t)
	a.fetchOptions = []fetch.Option{fetch.WithHTTPClient(srv.Client())}
	if code := a.execute(context.Background(), []string{"--cache-dir", t.TempDir(), srv.URL + "/cat.png"}); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
}

func TestHostedVideoFailureExitsNonZero(t *testing.T) {
	t.Parallel()
	a, _, _ := newTestApp(t)
	dir := t.TempDir()
	a.fetchOptions = []fetch.Option{fetch.WithVideoClient(&stubVideoClient{err: errors.New("private video")})}
	code := a.execute(context.Background(), []string{"--cache-dir", dir, "https://www.youtube.com/watch?v=gone"})
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
}

func TestThumbnailFailureDoesNotStopPlayback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"undecodable body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html>rate limited</html>")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			a, stdout, stderr := newTestApp(t)
			dir := t.TempDir()
			client := &stubVideoClient{video: &youtube.Video{
				Title:      "Clip",
				Formats:    youtube.FormatList{{ItagNo: 18, MimeType: "video/mp4", Height: 360, AudioChannels: 2}},
				Thumbnails: youtube.Thumbnails{{URL: srv.URL + "/thumb.jpg", Width: 480}},
			}}
			a.fetchOptions = []fetch.Option{fetch.WithVideoClient(client), fetch.WithHTTPClient(srv.Client())}
			src := &stubSource{frames: 3}
			var opened string
			a.openVideo = func(path string, _ *zap.SugaredLogger) (ansiplay.FrameSource, error) {
				opened = path
				return src, nil
			}

			code := a.execute(context.Background(), []string{"--cache-dir", dir, "--height", "8", "https://www.youtube.com/watch?v=clip42"})
			if code != 0 {
				t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
			}
			if opened != filepath.Join(dir, "clip42.mp4") {
				t.Errorf("Unexpected video path %q", opened)
			}
			if src.read != 3 || !src.closed {
				t.Errorf("Video was not played to the end: read %d closed %v", src.read, src.closed)
			}
			if !strings.Contains(stdout.String(), "Downloading Clip...") {
				t.Error("Missing download message")
			}
			leftovers, _ := filepath.Glob(filepath.Join(dir, "ansiplay-*"))
			if len(leftovers) != 0 {
				t.Errorf("Thumbnail file was not removed: %v", leftovers)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	a, stdout, stderr := newTestApp(t)
	dir := t.TempDir()
	path := writePNG(t, dir)
	out := filepath.Join(dir, "snap.png")

	if code := a.execute(context.Background(), []string{"--snapshot", out, "--color", path}); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("Snapshot mode should not write frames, got %d bytes", stdout.Len())
	}
	if _, _, err := imageutil.LoadImage(out); err != nil {
		t.Errorf("Snapshot is not a readable image: %v", err)
	}
}
