package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wbrown/ansiplay"
)

// setupTerminal prepares an interactive stdout for playback and returns
// the function restoring it. Output that is not a terminal is left alone.
func setupTerminal(w io.Writer) (restore func(), err error) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}, nil
	}
	if err := enableVirtualTerminal(f); err != nil {
		return func() {}, err
	}
	io.WriteString(f, ansiplay.HideCursor)
	return func() {
		io.WriteString(f, ansiplay.ShowCursor)
	}, nil
}
