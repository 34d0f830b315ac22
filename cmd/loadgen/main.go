package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/pulse/internal/loadgen"
	"github.com/okian/pulse/pkg/logger"
)

const (
	defaultStudents = 5000
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultSeed     = 1
	runTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		students = flag.Int("students", defaultStudents, "Number of students to generate")
		batch    = flag.Int("batch", loadgen.DefaultBatchSize, "Rows per request")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent submitters")
		k        = flag.Int("k", loadgen.DefaultK, "Clusters per run")
		seed     = flag.Uint64("seed", defaultSeed, "Generator seed")
		firstID  = flag.Int64("first-id", loadgen.DefaultFirstID, "Id of the first student")
		timeout  = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		wait     = flag.Duration("wait", loadgen.DefaultWaitTimeout, "Ingestion drain timeout")
		output   = flag.String("output", "", "Save generated rows as JSON")
		logFile  = flag.String("log", "", "Also write logs to this file")
		verbose  = flag.Bool("verbose", false, "Log every batch")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closeLog, err := loadgen.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:     *baseURL,
		NumStudents: *students,
		BatchSize:   *batch,
		Workers:     *workers,
		K:           *k,
		Seed:        *seed,
		FirstID:     *firstID,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		OutputFile:  *output,
		Verbose:     *verbose,
	}
	if _, err := loadgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
