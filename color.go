package ansiplay

import "github.com/wbrown/ansiplay/imageutil"

// ColorClass is the terminal color family a pixel is quantized into. It is
// independent of the pixel's brightness, which selects the glyph.
type ColorClass uint8

const (
	ColorNone ColorClass = iota
	ColorWhite
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan

	numColorClasses
)

// Quantization thresholds, tuned for terminal readability.
const (
	// whiteMaxSaturation and whiteMinValue define the neutral bright class.
	whiteMaxSaturation = 30
	whiteMinValue      = 200

	// Hue classes need at least this much saturation and value.
	minSaturation = 50
	minValue      = 50
)

var colorClassInfo = [numColorClasses]struct {
	name string
	code string
	rgb  imageutil.RGB // as measured from a terminal with a color picker
}{
	ColorNone:          {"none", "0", imageutil.RGB{R: 0xC8, G: 0xC7, B: 0xC7}},
	ColorWhite:         {"white", "97", imageutil.RGB{R: 0xFF, G: 0xFF, B: 0xFF}},
	ColorRed:           {"red", "31", imageutil.RGB{R: 0xB9, G: 0x30, B: 0x18}},
	ColorGreen:         {"green", "32", imageutil.RGB{R: 0x52, G: 0xBF, B: 0x37}},
	ColorYellow:        {"yellow", "33", imageutil.RGB{R: 0xA6, G: 0x8A, B: 0x0D}},
	ColorBlue:          {"blue", "34", imageutil.RGB{R: 0x0D, G: 0x23, B: 0xBF}},
	ColorMagenta:       {"magenta", "35", imageutil.RGB{R: 0xBA, G: 0x3F, B: 0xC0}},
	ColorCyan:          {"cyan", "36", imageutil.RGB{R: 0x53, G: 0xC2, B: 0xC5}},
	ColorBrightRed:     {"bright-red", "91", imageutil.RGB{R: 0xF1, G: 0x77, B: 0x6D}},
	ColorBrightGreen:   {"bright-green", "92", imageutil.RGB{R: 0x8D, G: 0xF6, B: 0x7A}},
	ColorBrightYellow:  {"bright-yellow", "93", imageutil.RGB{R: 0xFF, G: 0xFC, B: 0x7F}},
	ColorBrightBlue:    {"bright-blue", "94", imageutil.RGB{R: 0x6A, G: 0x71, B: 0xF6}},
	ColorBrightMagenta: {"bright-magenta", "95", imageutil.RGB{R: 0xF0, G: 0x7F, B: 0xF8}},
	ColorBrightCyan:    {"bright-cyan", "96", imageutil.RGB{R: 0x8E, G: 0xFA, B: 0xFD}},
}

func (c ColorClass) String() string {
	if c >= numColorClasses {
		return "invalid"
	}
	return colorClassInfo[c].name
}

// Escape returns the SGR sequence that switches the terminal to c.
func (c ColorClass) Escape() string {
	if c >= numColorClasses {
		return ESC + "[0m"
	}
	return ESC + "[" + colorClassInfo[c].code + "m"
}

// RGB returns the color c is displayed with by a typical terminal.
func (c ColorClass) RGB() imageutil.RGB {
	if c >= numColorClasses {
		return colorClassInfo[ColorNone].rgb
	}
	return colorClassInfo[c].rgb
}

// Bright returns the bright variant of a hue class; other classes are
// returned unchanged.
func (c ColorClass) Bright() ColorClass {
	if c >= ColorRed && c <= ColorCyan {
		return c + (ColorBrightRed - ColorRed)
	}
	return c
}

// Classify maps a pixel in OpenCV's 8-bit HSV scale (hue 0-180) to its
// color class.
func Classify(px imageutil.HSV, bright bool) ColorClass {
	return ClassifyHue(int(px.H)*2, px.S, px.V, bright)
}

// ClassifyHue classifies a pixel whose hue is given in degrees [0, 360].
// The first matching rule wins: desaturated bright pixels are white, then
// the six hue buckets apply (red wraps across 0) provided saturation and
// value both reach the floor. Everything else has no color.
func ClassifyHue(hue int, s, v uint8, bright bool) ColorClass {
	if s < whiteMaxSaturation && v >= whiteMinValue {
		return ColorWhite
	}
	if s < minSaturation || v < minValue {
		return ColorNone
	}

	var c ColorClass
	switch {
	case hue >= 355 || hue <= 10:
		c = ColorRed
	case hue >= 51 && hue <= 60:
		c = ColorYellow
	case hue >= 81 && hue <= 140:
		c = ColorGreen
	case hue >= 170 && hue <= 200:
		c = ColorCyan
	case hue >= 221 && hue <= 240:
		c = ColorBlue
	case hue >= 281 && hue <= 320:
		c = ColorMagenta
	default:
		return ColorNone
	}

	// Value dominant pixels read as the bright variant.
	if bright && s < v {
		return c.Bright()
	}
	return c
}
