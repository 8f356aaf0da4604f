// Package main provides the entry point for the kbreplace CLI.
//
// kbreplace looks up a Windows update in the Microsoft Update Catalog and
// prints the cumulative update it supersedes.
//
// Usage:
//
//	kbreplace KB5001234
//	kbreplace --json KB5001234 KB5002345
//
// See --help for all available options.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
