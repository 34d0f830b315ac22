package loadgen

import "time"

// Defaults applied by Normalize.
const (
	DefaultBatchSize   = 100
	DefaultWorkers     = 4
	DefaultK           = 5
	DefaultTimeout     = 30 * time.Second
	DefaultWaitTimeout = 2 * time.Minute
	DefaultFirstID     = 1

	pollInterval         = 100 * time.Millisecond
	topRiskLimit         = 10
	percentageMultiplier = 100
	filePermission       = 0o600
	directoryPermission  = 0o750
)

// Schemes is every projection a run exercises.
var Schemes = []string{"pca", "tsne", "umap"}
