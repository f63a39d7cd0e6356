package entities

import "time"

type NameCount struct {
	Name  string
	Count int64
}

type RunStats struct {
	TotalTracked       int64
	IngestedLast24h    int64
	TopClassifications []NameCount
	TopCompanies       []NameCount
	TopWorkTypes       []NameCount
}

type CycleStatus string

const (
	CycleCompleted           CycleStatus = "completed"
	CycleCompletedWithErrors CycleStatus = "completed-with-errors"
)

// CycleResult counts what happened to the listings of one ingestion cycle.
type CycleResult struct {
	Status     CycleStatus
	Fetched    int
	New        int
	Filtered   int
	Failed     int
	Duplicates int
	Aborted    bool
	StartedAt  time.Time
	Duration   time.Duration
}
