package model

import "time"

// RawRow is one survey row as submitted by a client, keyed by column name.
// Values are strings or JSON numbers/booleans.
type RawRow map[string]any

// Ingest is the unit of work carried by the ingestion queue.
type Ingest struct {
	RowID    string    // idempotency key, the row's id column when present
	Index    int       // position of the row in its submitted batch
	Row      RawRow    // untouched client payload
	Received time.Time // when the API accepted the row
}

// RiskEntry is one position in the at-risk ranking.
type RiskEntry struct {
	Rank      int     `json:"rank"`
	StudentID int64   `json:"student_id"`
	Score     float64 `json:"risk_score"`
	Level     string  `json:"risk_level"`
}
