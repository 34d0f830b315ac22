package loadgen

import "errors"

// Error constants.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrStatus       = errors.New("unexpected status")
	ErrIngestStall  = errors.New("ingestion did not drain")
	ErrVerification = errors.New("verification failed")
	ErrNoRows       = errors.New("no rows")
)
