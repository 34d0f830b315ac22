package loadgen

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/pulse/pkg/logger"
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() {}
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFn = func() { _ = file.Close() }
	}
	if err := logger.InitWithWriter(w); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Pulse Load Tool
===============

Generates synthetic survey rows, submits them concurrently, then clusters
under every projection and verifies labels and coordinate stability.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -students int      Number of students to generate (default 5000)
  -batch int         Rows per request (default 100)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -k int             Clusters per run (default 5)
  -seed uint         Generator seed (default 1)
  -first-id int      Id of the first student (default 1)
  -timeout duration  HTTP request timeout (default 30s)
  -wait duration     Ingestion drain timeout (default 2m)
  -output string     Save generated rows as JSON
  -log string        Also write logs to this file
  -verbose           Log every batch
  -help              Show this help message

Examples:
  go run ./cmd/loadgen -students 20000 -workers 16
  go run ./cmd/loadgen -first-id 100001 -seed 7 -output rows.json
`)
}
