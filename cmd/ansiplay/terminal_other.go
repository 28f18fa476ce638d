//go:build !windows

package main

import "os"

// enableVirtualTerminal is a no-op: other terminals interpret ANSI escapes
// natively.
func enableVirtualTerminal(*os.File) error {
	return nil
}
