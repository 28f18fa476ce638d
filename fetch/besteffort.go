package fetch

import (
	"context"
	"errors"

	"github.com/wbrown/ansiplay"
)

// BestEffort is the result of an auxiliary fetch whose failure must not
// stop playback.
type BestEffort struct {
	Path string
	Err  error
}

// OK reports whether the fetch succeeded.
func (b BestEffort) OK() bool {
	return b.Err == nil
}

// Absorbed reports whether the failure is a fetch failure the caller may
// ignore. Other errors still need handling.
func (b BestEffort) Absorbed() bool {
	var fe *ansiplay.FetchError
	return errors.As(b.Err, &fe)
}

// Thumbnail downloads a preview image. An empty link is a fetch failure.
func (f *Fetcher) Thumbnail(ctx context.Context, link string) BestEffort {
	if link == "" {
		return BestEffort{Err: &ansiplay.FetchError{Err: errors.New("no thumbnail")}}
	}
	p, err := f.Download(ctx, link)
	if err != nil {
		f.logger.Debugw("Thumbnail unavailable", "url", link, "error", err)
		return BestEffort{Err: err}
	}
	return BestEffort{Path: p}
}
