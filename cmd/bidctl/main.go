// Command bidctl drives an auction marketplace session from the terminal.
//
// The access token is mirrored to a file or Redis and the refresh cookie to
// a JSON file, so a session started by "bidctl login" is restored by every
// later command.
//
//	bidctl [-config path] [-env path] <command> [flags]
//
// Commands: login, logout, whoami, restore, nickname, order, products.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	fs := flag.NewFlagSet("bidctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", filepath.Join(home, ".bidctl", "config.yaml"), "path to the YAML config file")
	envPath := fs.String("env", ".env", "optional .env file with BIDCTL_* overrides")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: bidctl [-config path] <login|logout|whoami|restore|nickname|order|products> [flags]")
		return 2
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		return 2
	}

	cfg, err := loadConfig(*configPath, *envPath, home)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	a, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.close()
	if err := cmd(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
