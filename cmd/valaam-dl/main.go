package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/handiism/valaam-downloader/internal/config"
	"github.com/handiism/valaam-downloader/internal/download"
	"github.com/handiism/valaam-downloader/internal/http"
	"github.com/handiism/valaam-downloader/internal/menu"
	"github.com/handiism/valaam-downloader/internal/tui"
	"github.com/handiism/valaam-downloader/internal/valaam"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	flags := pflag.NewFlagSet("valaam-dl", pflag.ContinueOnError)
	var (
		configFlag      = flags.StringP("config", "c", "", "Path to config file (json, yaml or toml)")
		writeConfigFlag = flags.String("write-config", "", "Write the effective settings to this file and exit")
		verboseFlag     = flags.BoolP("verbose", "v", false, "Show verbose output")
	)
	flags.String("chants-url", "", "Chant listing page (overrides config)")
	flags.StringP("output", "o", "", "Downloads directory (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("playlist", false, "Create a playlist file when downloading a whole album")
	flags.Bool("no-progress-ui", false, "Print progress as lines instead of the progress view")
	flags.Bool("no-sanitize", false, "Keep album and track names unchanged in file paths")
	flags.Bool("no-clear", false, "Do not clear the screen between menus")

	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Valaam Chants Downloader - Download chants from valaam.ru")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  valaam-dl [options]")
		fmt.Fprintln(os.Stderr)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	// Load config
	settings, err := config.Load(*configFlag, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitError
	}

	logger := config.NewLogger(settings.LogLevel, os.Stderr)

	if *writeConfigFlag != "" {
		if err := settings.Save(*writeConfigFlag); err != nil {
			logger.Error().Err(err).Msg("Failed to write config")
			return exitError
		}
		logger.Info().Str("path", *writeConfigFlag).Msg("Config written")
		return exitOK
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Menus block on stdin and cannot observe the context, so an interrupt
	// outside of a download ends the process right away. Execute reads no
	// input and removes partial files when the context is cancelled.
	var downloading atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cancelling...")
			cancel()
			if !downloading.Load() {
				os.Exit(exitInterrupted)
			}
		case <-ctx.Done():
		}
	}()

	verbose := *verboseFlag || logger.GetLevel() <= zerolog.DebugLevel

	// Events go to stdout until the progress view takes over.
	printEvent := func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}
		fmt.Println(eventPrefix(event.Level) + event.Message)
	}
	forward := printEvent

	client := http.NewClient(http.Options{
		PageTimeout:     settings.PageTimeout,
		DownloadTimeout: settings.DownloadTimeout,
		UserAgent:       settings.UserAgent,
	})

	parser, err := valaam.NewParser(settings.OptionPattern, settings.PlaylistPattern, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid page patterns")
		return exitError
	}

	selector := menu.NewSelector(os.Stdin, os.Stdout)
	selector.SetClearScreen(settings.ClearScreen)

	manager, err := download.NewManager(settings, download.Dependencies{
		Fetcher:  client,
		Parser:   parser,
		Selector: selector,
		Logger:   &logger,
	}, func(event download.ProgressEvent) {
		forward(event)
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create download manager")
		return exitError
	}

	sel, err := manager.Select(ctx)
	if err != nil {
		return exitCode(ctx, logger, err)
	}

	downloading.Store(true)
	var result *download.Result
	if sel.All && sel.Playlist.Len() > 0 && settings.ProgressUI && isatty.IsTerminal(os.Stdout.Fd()) {
		progress := tui.NewProgress(ctx, sel.Album, verbose)
		forward = progress.Send
		result, err = progress.Run(func(ctx context.Context) (*download.Result, error) {
			return manager.Execute(ctx, sel)
		})
		forward = printEvent
	} else {
		result, err = manager.Execute(ctx, sel)
	}
	if err != nil {
		return exitCode(ctx, logger, err)
	}

	if sel.All && result != nil {
		fmt.Println()
		fmt.Printf("Complete! Downloaded %d/%d songs to %s\n", len(result.Downloaded), sel.Playlist.Len(), result.Folder)
	}
	return exitOK
}

// exitCode logs err and maps it to the process exit status.
func exitCode(ctx context.Context, logger zerolog.Logger, err error) int {
	switch {
	case download.IsQuit(err):
		return exitOK
	case errors.Is(err, tui.ErrCancelled), ctx.Err() != nil:
		fmt.Println("\nDownload cancelled.")
		return exitInterrupted
	default:
		logger.Error().Err(err).Msg("Download failed")
		return exitError
	}
}

func eventPrefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "✗ "
	case download.LevelWarning:
		return "! "
	case download.LevelSuccess:
		return "✓ "
	case download.LevelInfo:
		return "› "
	default:
		return "  "
	}
}
