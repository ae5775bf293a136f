// Package main is the entry point for fetchlog.
// fetchlog finds files by extension, name pattern and content across
// directories and zip archives, and copies the matches into one folder.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/f4ah6o/fetchlog-go/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
