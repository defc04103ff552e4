package port

import "time"

// RunRecord describes one completed (or in-progress) offload run
type RunRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Reaped     int
	Uploaded   int
	Expired    int
}

// RunJournal records offload run history for troubleshooting
type RunJournal interface {
	// RecordRunStart inserts a new run and returns its ID
	RecordRunStart(start time.Time) (int64, error)

	// FinishRun records the end of a run and its counters
	FinishRun(id int64, finish time.Time, reaped, uploaded, expired int) error

	// RecordUpload records one uploaded file for a run
	RecordUpload(runID int64, name, subPath string, size int64, at time.Time) error

	// LastRun returns the most recently started run, or nil if none exist
	LastRun() (*RunRecord, error)
}
