package ansiplay

import (
	"bufio"
	"io"
	"strings"
)

const (
	ESC = "\u001b"

	// ClearScreen erases the display and homes the cursor.
	ClearScreen = ESC + "[2J" + ESC + "[H"
	// ResetColor returns the terminal to its default foreground.
	ResetColor = ESC + "[0m"
	HideCursor = ESC + "[?25l"
	ShowCursor = ESC + "[?25h"
)

// colorUnset is the tracker state at the start of a row. It matches no
// cell, so the first cell of every row writes its own escape.
const colorUnset ColorClass = 255

// assembleRow writes one output line. An escape is written only when the
// class of a cell differs from the one before it, so the escape count of
// a row equals its class transitions. Rows are not reset at their end;
// WriteFrame resets once after the last line.
func assembleRow(sb *strings.Builder, row []Cell, padding int, blank rune, color bool) {
	for i := 0; i < padding; i++ {
		sb.WriteRune(blank)
	}
	current := colorUnset
	for _, cell := range row {
		if color && cell.Class != current {
			sb.WriteString(cell.Class.Escape())
			current = cell.Class
		}
		sb.WriteRune(cell.Glyph)
	}
}

// CountEscapes returns the number of escape sequences in s.
func CountEscapes(s string) int {
	return strings.Count(s, ESC+"[")
}

// WriteFrame writes a rendered frame: the optional clear, every line, the
// color reset of a colored frame, then any debug trailer.
func WriteFrame(w io.Writer, f *RenderedFrame) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriterSize(w, 64*1024)
	}
	if f.Clear {
		bw.WriteString(ClearScreen)
	}
	for _, line := range f.Lines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	if f.Reset {
		bw.WriteString(ResetColor)
	}
	if f.Trailer != "" {
		bw.WriteString(f.Trailer)
	}
	return bw.Flush()
}
