package ansiplay

import (
	"errors"
	"testing"
)

func TestFit(t *testing.T) {
	t.Parallel()
	vp := Viewport{MaxWidth: 315, MaxHeight: 80}
	tests := []struct {
		name          string
		width, height int
		mode          Mode
		want          Dimensions
	}{
		{"fits image", 100, 50, ModeImage, Dimensions{200, 50, 57}},
		{"fits video fills viewport", 100, 50, ModeVideo, Dimensions{315, 80, 0}},
		{"too wide", 400, 100, ModeImage, Dimensions{315, 39, 0}},
		{"too wide video", 400, 100, ModeVideo, Dimensions{315, 39, 0}},
		{"too tall", 100, 200, ModeImage, Dimensions{80, 80, 117}},
		{"height pass overrides width pass", 1000, 1000, ModeImage, Dimensions{160, 80, 77}},
		{"exact fit", 157, 80, ModeImage, Dimensions{314, 80, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fit(tt.width, tt.height, vp, tt.mode)
			if err != nil {
				t.Fatalf("Fit returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fit(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestFitSmallViewport(t *testing.T) {
	t.Parallel()
	vp := Viewport{MaxWidth: 4, MaxHeight: 4}
	got, err := Fit(2, 2, vp, ModeImage)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Dimensions{4, 2, 0}); got != want {
		t.Errorf("image mode: got %+v, want %+v", got, want)
	}
	got, err = Fit(2, 2, vp, ModeVideo)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Dimensions{4, 4, 0}); got != want {
		t.Errorf("video mode: got %+v, want %+v", got, want)
	}
}

func TestFitDegenerate(t *testing.T) {
	t.Parallel()
	vp := Viewport{MaxWidth: 315, MaxHeight: 80}
	for _, size := range [][2]int{{0, 10}, {10, 0}, {0, 0}, {-5, 10}} {
		_, err := Fit(size[0], size[1], vp, ModeImage)
		var ge *GeometryError
		if !errors.As(err, &ge) {
			t.Errorf("Fit(%v): expected GeometryError, got %v", size, err)
		}
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Fit(%v): GeometryError should match ErrUnsupportedFormat", size)
		}
	}
	if _, err := Fit(10, 10, Viewport{}, ModeImage); err == nil {
		t.Error("expected error for empty viewport")
	}
}

func TestFitProperties(t *testing.T) {
	t.Parallel()
	vp := Viewport{MaxWidth: 315, MaxHeight: 80}
	for w := 1; w <= 1200; w += 7 {
		for h := 1; h <= 600; h += 5 {
			got, err := Fit(w, h, vp, ModeImage)
			if err != nil {
				t.Fatalf("Fit(%d, %d): %v", w, h, err)
			}
			if got.Width > vp.MaxWidth || got.Height > vp.MaxHeight {
				t.Fatalf("Fit(%d, %d) = %+v exceeds viewport", w, h, got)
			}
			if got.LeftPadding != (vp.MaxWidth-got.Width)/2 {
				t.Fatalf("Fit(%d, %d) padding %d, want %d", w, h, got.LeftPadding, (vp.MaxWidth-got.Width)/2)
			}

			doubled := 2 * w
			if doubled <= vp.MaxWidth && h <= vp.MaxHeight {
				if got.Width != doubled || got.Height != h {
					t.Fatalf("Fit(%d, %d) = %+v, want pass-through %dx%d", w, h, got, doubled, h)
				}
				continue
			}
			// Aspect of the output matches doubled:h within one cell on either
			// axis.
			if got.Width == 1 || got.Height == 1 {
				continue
			}
			skew := got.Width*h - got.Height*doubled
			if skew < 0 {
				skew = -skew
			}
			if skew > max(doubled, h) {
				t.Fatalf("Fit(%d, %d) = %+v distorts aspect (skew %d)", w, h, got, skew)
			}
		}
	}
}
