package sqlite

import (
	"database/sql"
	"time"

	"github.com/allanpeda/motion-scripts/internal/port"
)

// RecordRunStart inserts a new run and returns its ID
func (s *Store) RecordRunStart(start time.Time) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO runs (started_at) VALUES (?)",
		start,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishRun records the end of a run and its counters
func (s *Store) FinishRun(id int64, finish time.Time, reaped, uploaded, expired int) error {
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, reaped = ?, uploaded = ?, expired = ? WHERE id = ?",
		finish, reaped, uploaded, expired, id,
	)
	return err
}

// RecordUpload records one uploaded file for a run
func (s *Store) RecordUpload(runID int64, name, subPath string, size int64, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO uploads (run_id, name, sub_path, size, uploaded_at) VALUES (?, ?, ?, ?, ?)",
		runID, name, subPath, size, at,
	)
	return err
}

// LastRun returns the most recently started run
func (s *Store) LastRun() (*port.RunRecord, error) {
	query := `
		SELECT id, started_at, finished_at, reaped, uploaded, expired
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	record := &port.RunRecord{}
	var finishedAt sql.NullTime

	err := s.db.QueryRow(query).Scan(
		&record.ID, &record.StartedAt, &finishedAt,
		&record.Reaped, &record.Uploaded, &record.Expired,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		record.FinishedAt = finishedAt.Time
	}

	return record, nil
}
