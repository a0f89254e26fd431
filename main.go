package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kettlebent/tagforge/internal/build"
	"github.com/kettlebent/tagforge/internal/cmd"
	"github.com/kettlebent/tagforge/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	rootCmd := cmd.NewRootCmd(build.Version, build.Date)
	if _, err := rootCmd.ExecuteC(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	statePath, stateErr := update.DefaultStatePath()
	if stateErr != nil {
		fmt.Fprintf(os.Stderr, "warning: update check: %v\n", stateErr)
		return nil
	}

	result, checkErr := update.CheckForUpdate(ctx, statePath, build.Version, "kettlebent/tagforge")
	if checkErr != nil {
		// Update check is best-effort; don't fail the CLI for transient errors.
		return nil
	}
	if result == nil || !result.UpdateAvailable {
		return nil
	}

	fmt.Fprintf(
		os.Stderr,
		"\nUpdate available: %s -> %s\n%s\n\n",
		result.CurrentVersion,
		result.LatestVersion,
		result.ReleaseURL,
	)

	return nil
}

type exitCoder interface {
	ExitCode() int
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var coded exitCoder
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}

	return 1
}
