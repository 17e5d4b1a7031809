package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mmdione/reV/internal/app"
	"github.com/mmdione/reV/internal/cli"
	"github.com/mmdione/reV/internal/outputs"
)

// main is the entrypoint for the rev application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The in-memory store serves validation and local experimentation; a
	// cluster deployment injects a store bound to the real dataset
	// container here. No pipeline resolver is wired in standalone mode.
	revApp := app.NewApp(outW, appConfig, outputs.NewMemStore(), nil)

	return revApp.Run(context.Background())
}
