// Command console is the administration console. It signs in against the
// selected backend (the demo credentials in memory mode), persists the
// session in the local state file, and manages the catalogue.
//
// Usage:
//
//	console signin -email=... [-password=...]   (or CONSOLE_PASSWORD)
//	console signout
//	console whoami
//	console projects [list|add|update|delete] [flags]
//	console reviews [list|approve|delete] [flags]
//	console inquiries [list|status|delete] [flags]
//	console settings [show|set] [flags]
//	console stats
//	console calc -monthly=... [-energy]
//
// Read-only commands work without signing in; mutations and the
// dashboard require an administrator.
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/solarsite/internal/app"
	"github.com/heartmarshall/solarsite/internal/config"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("start: %v", err)
	}

	c := &console{app: a, out: os.Stdout}
	err = c.run(ctx, os.Args[1], os.Args[2:])
	a.Close()

	switch {
	case errors.Is(err, errUsage):
		usage(os.Stderr)
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: console <command> [subcommand] [flags]

commands:
  signin     sign in with email and password
  signout    end the current session
  whoami     show the current session
  projects   list | add | update | delete
  reviews    list | approve | delete
  inquiries  list | status | delete
  settings   show | set
  stats      dashboard counters
  calc       savings estimate from the current settings`)
}
