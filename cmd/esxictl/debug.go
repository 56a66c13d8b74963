package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
)

var debugLogger *slog.Logger
var debugCleanup func()

// runID tags every debug log line of one invocation.
var runID = uuid.NewString()

func initDebugLogger() func() {
	if !debugLogs {
		return nil
	}
	path := configs.Defaults.Output.DebugLogPath
	logger, cleanup, err := setupDebugLogger(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to enable debug log: %v\n", err)
		return nil
	}
	debugLogger = logger.With("run_id", runID)
	debugCleanup = cleanup
	fmt.Fprintf(os.Stderr, "  Debug log: %s\n", path)
	return cleanup
}

func getLogger() *slog.Logger {
	if debugLogs && debugLogger != nil {
		return debugLogger
	}
	return newPrettyLogger(os.Stderr)
}

func setupDebugLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	mw := io.MultiWriter(os.Stderr, f)
	return newDebugLogger(mw), func() { _ = f.Close() }, nil
}
