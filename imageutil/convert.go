package imageutil

// HSV is a color in the 8-bit device scale used by OpenCV: hue in
// [0, 180) (half degrees), saturation and value in [0, 255].
type HSV struct {
	H, S, V uint8
}

// ToHSV converts an RGB color to HSV with the same rounding OpenCV applies
// for COLOR_BGR2HSV on 8-bit images, so the pure Go path and the gocv path
// classify pixels identically.
func ToHSV(c RGB) HSV {
	r, g, b := int(c.R), int(c.G), int(c.B)
	v := max(r, g, b)
	lo := min(r, g, b)
	diff := v - lo

	var s int
	if v > 0 {
		s = (255*diff + v/2) / v
	}

	var h int
	if diff > 0 {
		var deg int
		switch v {
		case r:
			deg = 60 * (g - b)
		case g:
			deg = 120*diff + 60*(b-r)
		default:
			deg = 240*diff + 60*(r-g)
		}
		// deg is degrees * diff; halve and round to the device scale.
		h = (deg + diff) / (2 * diff)
		if deg < 0 {
			h = (deg + 360*diff + diff) / (2 * diff)
		}
		if h >= 180 {
			h -= 180
		}
	}
	return HSV{H: uint8(h), S: uint8(s), V: uint8(v)}
}

// FrameToHSV converts every pixel of an RGB frame. Rows are returned in
// raster order, each row holding Width() entries.
func FrameToHSV(f *Frame) [][]HSV {
	w, h := f.Width(), f.Height()
	out := make([][]HSV, h)
	for y := 0; y < h; y++ {
		row := make([]HSV, w)
		for x := 0; x < w; x++ {
			row[x] = ToHSV(f.RGB.GetRGB(x, y))
		}
		out[y] = row
	}
	return out
}
