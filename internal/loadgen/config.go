package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumStudents int           // Number of distinct students to generate
	BatchSize   int           // Rows per POST /students request
	Workers     int           // Number of concurrent submitters
	K           int           // Cluster count requested per scheme
	Seed        uint64        // Generator seed; equal seeds give equal rows
	FirstID     int64         // Id of the first generated student
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // How long to wait for ingestion to drain
	OutputFile  string        // Where generated rows are saved, empty to skip
	Verbose     bool          // Log every batch
}

// Stats holds run statistics.
type Stats struct {
	RunID          string
	RowsGenerated  int
	Batches        int
	Accepted       int
	Duplicates     int
	Rejected       int
	Backpressured  int
	FailedBatches  int
	Stored         int
	ClusterRuns    int
	StableSchemes  int
	TopRiskEntries int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
