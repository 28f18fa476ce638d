// Command ansiplay plays images, animated GIFs and videos as colored
// character art in the terminal.
//
// Usage:
//
//	ansiplay [flags] <file|url> [color] [fast] [debug]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
