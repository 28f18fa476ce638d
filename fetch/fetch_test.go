package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/wbrown/ansiplay"
)

type fakeVideoClient struct {
	video     *youtube.Video
	err       error
	streamErr error
	body      string
	lookups   int
	streamed  *youtube.Format
}

func (c *fakeVideoClient) GetVideoContext(ctx context.Context, url string) (*youtube.Video, error) {
	c.lookups++
	return c.video, c.err
}

func (c *fakeVideoClient) GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	c.streamed = format
	if c.streamErr != nil {
		return nil, 0, c.streamErr
	}
	return io.NopCloser(strings.NewReader(c.body)), int64(len(c.body)), nil
}

func TestDownload(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "pixels")
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(WithHTTPClient(srv.Client()), WithDir(dir))

	p, err := f.Download(context.Background(), srv.URL+"/cat.png")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if filepath.Ext(p) != ".png" {
		t.Errorf("Expected .png file, got %s", p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("Failed to read download: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("Expected body %q, got %q", "pixels", data)
	}

	_, err = f.Download(context.Background(), srv.URL+"/missing.png")
	var fe *ansiplay.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError for 404, got %v", err)
	}
}

func TestThumbnailBestEffort(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(WithHTTPClient(srv.Client()), WithDir(t.TempDir()))
	res := f.Thumbnail(context.Background(), srv.URL+"/thumb.jpg")
	if res.OK() {
		t.Fatal("Expected failed thumbnail")
	}
	if !res.Absorbed() {
		t.Errorf("Expected fetch failure to be absorbed, got %v", res.Err)
	}

	res = f.Thumbnail(context.Background(), "")
	if res.OK() || !res.Absorbed() {
		t.Errorf("Expected absorbed failure for missing link, got %+v", res)
	}

	if (BestEffort{Err: errors.New("disk full")}).Absorbed() {
		t.Error("Non-fetch errors must not be absorbed")
	}
}

func TestCacheName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ.mp4"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ.mp4"},
	}
	for _, tt := range tests {
		if got := CacheName(tt.link); got != tt.want {
			t.Errorf("CacheName(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestIsHostedVideo(t *testing.T) {
	t.Parallel()
	if !IsHostedVideo("https://www.youtube.com/watch?v=abc") {
		t.Error("youtube watch link not detected")
	}
	if IsHostedVideo("https://example.com/cat.gif") {
		t.Error("plain file link detected as hosted video")
	}
	if IsHostedVideo("youtube.mp4") {
		t.Error("local file detected as hosted video")
	}
	if got := URLExt("https://example.com/a/cat.GIF?x=1"); got != "gif" {
		t.Errorf("URLExt = %q, want gif", got)
	}
}

func TestVideoDownloadsBestFormat(t *testing.T) {
	t.Parallel()
	client := &fakeVideoClient{
		video: &youtube.Video{
			Title: "Test Clip",
			Formats: youtube.FormatList{
				{ItagNo: 18, MimeType: `video/mp4; codecs="avc1"`, Height: 360, AudioChannels: 2},
				{ItagNo: 22, MimeType: `video/mp4; codecs="avc1"`, Height: 720, AudioChannels: 2},
				{ItagNo: 137, MimeType: `video/mp4; codecs="avc1"`, Height: 1080},
				{ItagNo: 43, MimeType: `video/webm; codecs="vp8"`, Height: 1080, AudioChannels: 2},
			},
			Thumbnails: youtube.Thumbnails{
				{URL: "small.jpg", Width: 120},
				{URL: "large.jpg", Width: 480},
			},
		},
		body: "mp4data",
	}
	dir := t.TempDir()
	var status bytes.Buffer
	f := New(WithVideoClient(client), WithDir(dir), WithStatus(&status))

	link := "https://www.youtube.com/watch?v=abc123"
	hv, err := f.Lookup(context.Background(), link)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if hv.ThumbnailURL != "large.jpg" {
		t.Errorf("Expected largest thumbnail, got %q", hv.ThumbnailURL)
	}
	if err := f.DownloadVideo(context.Background(), hv); err != nil {
		t.Fatalf("DownloadVideo failed: %v", err)
	}
	if client.streamed == nil || client.streamed.ItagNo != 22 {
		t.Errorf("Expected itag 22, got %+v", client.streamed)
	}
	if got := status.String(); got != "Downloading Test Clip...\n" {
		t.Errorf("Unexpected status %q", got)
	}
	if hv.CachePath != filepath.Join(dir, "abc123.mp4") {
		t.Errorf("Unexpected cache path %s", hv.CachePath)
	}

	// Second fetch is served from the cache without a lookup.
	p, err := f.Video(context.Background(), link)
	if err != nil {
		t.Fatalf("Video failed: %v", err)
	}
	if p != hv.CachePath {
		t.Errorf("Expected cached path %s, got %s", hv.CachePath, p)
	}
	if client.lookups != 1 {
		t.Errorf("Expected 1 lookup, got %d", client.lookups)
	}
}

func TestVideoFailureIsFatal(t *testing.T) {
	t.Parallel()
	client := &fakeVideoClient{err: errors.New("video unavailable")}
	f := New(WithVideoClient(client), WithDir(t.TempDir()))

	_, err := f.Fetch(context.Background(), "https://www.youtube.com/watch?v=gone")
	var fe *ansiplay.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
}
