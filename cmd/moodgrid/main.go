// Moodgrid is a turn-based grid puzzle where every creature's mood decides
// what the floor does to it.
// Usage: moodgrid [--version] [--config <file>] [--plain] [--script <file>] [--trace] [--feed <addr>] [levels_directory]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/cli"
	"github.com/nathoo/moodgrid/config"
	"github.com/nathoo/moodgrid/feed"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/loader"
	"github.com/nathoo/moodgrid/logger"
	"github.com/nathoo/moodgrid/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: moodgrid [--version] [--config <file>] [--plain] [--script <file>] [--trace] [--feed <addr>] [levels_directory]"

type options struct {
	configFile string
	levelsDir  string
	scriptFile string
	feedAddr   string
	plain      bool
	trace      bool
}

func main() {
	var opts options
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("moodgrid %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--config", "--script", "--feed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			i++
			switch args[i-1] {
			case "--config":
				opts.configFile = args[i]
			case "--script":
				opts.scriptFile = args[i]
			case "--feed":
				opts.feedAddr = args[i]
			}
		case "-h", "--help":
			fmt.Println(usage)
			return
		default:
			if opts.levelsDir == "" {
				opts.levelsDir = args[i]
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// Without --config, moodgrid.yaml in the working directory is optional.
	path, optional := opts.configFile, false
	if path == "" {
		path, optional = "moodgrid.yaml", true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if opts.levelsDir != "" {
		cfg.Levels = opts.levelsDir
	}
	if opts.feedAddr != "" {
		cfg.Feed.Addr = opts.feedAddr
	}

	// Use plain CLI for scripts, --plain, or when stdout is not a terminal.
	plain := opts.plain || opts.scriptFile != "" || !isTerminal()

	logOut, closeLog, err := logOutput(cfg.Log.File, plain)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.New(cfg.Log.Level, cfg.Log.Format, logOut)

	defs, err := loader.Load(cfg.Levels, loader.WithLogger(log))
	if err != nil {
		return fmt.Errorf("loading levels: %w", err)
	}

	game, err := flow.NewGame(defs,
		flow.WithRules(cfg.Rules),
		flow.WithDebug(cfg.Debug),
		flow.WithLogger(log),
		flow.WithStartLevel(cfg.StartLevel),
	)
	if err != nil {
		return err
	}

	if cfg.Feed.Addr != "" {
		stopFeed := startFeed(game, cfg.Feed.Addr, log)
		defer stopFeed()
	}

	if !plain {
		return tui.Run(ctx, game)
	}

	c := cli.New(game)
	c.Trace = opts.trace
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	return c.Run(ctx)
}

// startFeed serves the spectator feed in the background and returns a
// function that shuts it down.
func startFeed(game *flow.Game, addr string, log logrus.FieldLogger) func() {
	hub := feed.NewHub(log)
	detach := feed.Attach(game, hub)
	srv := feed.NewServer(addr, hub, log)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.WithError(err).WithField("addr", addr).Error("feed server stopped")
		}
	}()

	return func() {
		detach()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.WithError(err).Warn("feed shutdown")
		}
	}
}

// logOutput picks where logs go: the configured file, stderr for the plain
// runner, or nowhere while the full-screen UI owns the terminal.
func logOutput(file string, plain bool) (io.Writer, func(), error) {
	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, func() { f.Close() }, nil
	case plain:
		return os.Stderr, func() {}, nil
	default:
		return io.Discard, func() {}, nil
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
