// Package fetch downloads remote media to local files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/wbrown/ansiplay"
)

// VideoClient is the part of youtube.Client used for hosted videos.
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// Fetcher downloads media over HTTP and from hosted video services.
type Fetcher struct {
	http   *http.Client
	videos VideoClient
	dir    string
	status io.Writer
	logger *zap.SugaredLogger
}

// Option is a functional option for configuring a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client for plain downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.http = c
	}
}

// WithVideoClient sets the hosted video client.
func WithVideoClient(c VideoClient) Option {
	return func(f *Fetcher) {
		f.videos = c
	}
}

// WithDir sets the directory that downloads and the video cache live in.
func WithDir(dir string) Option {
	return func(f *Fetcher) {
		f.dir = dir
	}
}

// WithStatus sets where user facing progress messages are written.
func WithStatus(w io.Writer) Option {
	return func(f *Fetcher) {
		f.status = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher. Downloads go to the working directory by default.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:   http.DefaultClient,
		dir:    ".",
		status: io.Discard,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.videos == nil {
		f.videos = &youtube.Client{HTTPClient: f.http}
	}
	return f
}

// IsURL reports whether s is an http or https link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsHostedVideo reports whether link points at a hosted video page rather
// than a media file.
func IsHostedVideo(link string) bool {
	if !IsURL(link) {
		return false
	}
	return strings.Contains(link, "youtube.") || strings.Contains(link, "youtu.be/")
}

// URLExt returns the lowercase file extension of a link's path.
func URLExt(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}

// Download fetches a media file link into a new file in the download
// directory, keeping its extension, and returns the file path.
func (f *Fetcher) Download(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", &ansiplay.FetchError{URL: link, Err: err}
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", &ansiplay.FetchError{URL: link, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ansiplay.FetchError{URL: link, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	pattern := "ansiplay-*"
	if ext := URLExt(link); ext != "" {
		pattern += "." + ext
	}
	out, err := os.CreateTemp(f.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out.Name())
		return "", &ansiplay.FetchError{URL: link, Err: err}
	}
	f.logger.Debugw("Downloaded", "url", link, "file", out.Name(), "bytes", n)
	return out.Name(), nil
}

// HostedVideo describes a hosted video before it is downloaded.
type HostedVideo struct {
	Link         string
	Title        string
	ThumbnailURL string
	// CachePath is where the video file is stored; an existing file there
	// is reused without downloading.
	CachePath string

	video *youtube.Video
}

// Cached reports whether the video is already on disk.
func (v *HostedVideo) Cached() bool {
	_, err := os.Stat(v.CachePath)
	return err == nil
}

// CacheName returns the cache file name of a hosted video link: the text
// after the last '=' plus ".mp4".
func CacheName(link string) string {
	id := link
	if i := strings.LastIndex(link, "="); i >= 0 {
		id = link[i+1:]
	} else if extracted, err := youtube.ExtractVideoID(link); err == nil {
		id = extracted
	}
	return strings.TrimRight(id, "/") + ".mp4"
}

// Lookup resolves a hosted video link without downloading the media.
func (f *Fetcher) Lookup(ctx context.Context, link string) (*HostedVideo, error) {
	hv := &HostedVideo{
		Link:      link,
		CachePath: filepath.Join(f.dir, CacheName(link)),
	}
	if hv.Cached() {
		return hv, nil
	}
	video, err := f.videos.GetVideoContext(ctx, link)
	if err != nil {
		return nil, &ansiplay.FetchError{URL: link, Err: err}
	}
	hv.video = video
	hv.Title = video.Title
	hv.ThumbnailURL = bestThumbnail(video.Thumbnails)
	return hv, nil
}

// DownloadVideo stores the highest resolution mp4 stream carrying audio
// at hv.CachePath. It does nothing when the file is already cached.
func (f *Fetcher) DownloadVideo(ctx context.Context, hv *HostedVideo) error {
	if hv.Cached() {
		f.logger.Debugw("Using cached video", "file", hv.CachePath)
		return nil
	}
	if hv.video == nil {
		return &ansiplay.FetchError{URL: hv.Link, Err: errors.New("video was not looked up")}
	}
	format, err := bestFormat(hv.video.Formats)
	if err != nil {
		return &ansiplay.FetchError{URL: hv.Link, Err: err}
	}

	fmt.Fprintf(f.status, "Downloading %s...\n", hv.Title)
	stream, _, err := f.videos.GetStreamContext(ctx, hv.video, format)
	if err != nil {
		return &ansiplay.FetchError{URL: hv.Link, Err: err}
	}
	defer stream.Close()

	tmp := hv.CachePath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create video file: %w", err)
	}
	_, err = io.Copy(out, stream)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return &ansiplay.FetchError{URL: hv.Link, Err: err}
	}
	if err := os.Rename(tmp, hv.CachePath); err != nil {
		return fmt.Errorf("failed to store video: %w", err)
	}
	f.logger.Debugw("Downloaded video", "url", hv.Link, "file", hv.CachePath, "itag", format.ItagNo)
	return nil
}

// Video resolves and downloads a hosted video link, returning the local
// file path.
func (f *Fetcher) Video(ctx context.Context, link string) (string, error) {
	hv, err := f.Lookup(ctx, link)
	if err != nil {
		return "", err
	}
	if err := f.DownloadVideo(ctx, hv); err != nil {
		return "", err
	}
	return hv.CachePath, nil
}

// Fetch acquires the primary media of link and returns its local path.
func (f *Fetcher) Fetch(ctx context.Context, link string) (string, error) {
	if IsHostedVideo(link) {
		return f.Video(ctx, link)
	}
	return f.Download(ctx, link)
}

func bestFormat(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := formats.Type("video/mp4").WithAudioChannels()
	if len(candidates) == 0 {
		return nil, errors.New("no mp4 stream with audio")
	}
	best := &candidates[0]
	for i := range candidates[1:] {
		c := &candidates[i+1]
		if c.Height > best.Height || (c.Height == best.Height && c.Bitrate > best.Bitrate) {
			best = c
		}
	}
	return best, nil
}

func bestThumbnail(thumbs youtube.Thumbnails) string {
	var best *youtube.Thumbnail
	for i := range thumbs {
		if best == nil || thumbs[i].Width > best.Width {
			best = &thumbs[i]
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}
