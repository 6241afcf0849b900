package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// RunRecord is one stage execution in the manifest.
type RunRecord struct {
	RunID      string     `json:"run_id"`
	Stage      string     `json:"stage"`
	StartedAt  time.Time  `json:"started_ts"`
	FinishedAt *time.Time `json:"finished_ts,omitempty"`
	Status     string     `json:"status"`
	Error      string     `json:"error_message,omitempty"`
	Rows       int        `json:"rows,omitempty"`
}

// Manifest is the runs.json bookkeeping file. Every Start and Finish is
// flushed immediately so a crashed stage leaves a RUNNING record behind.
type Manifest struct {
	path    string
	records []RunRecord
}

// OpenManifest loads an existing manifest or starts an empty one.
func OpenManifest(path string) (*Manifest, error) {
	m := &Manifest{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m.records); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Start appends a RUNNING record for the stage and returns its run id.
func (m *Manifest) Start(stage string) (string, error) {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
	m.records = append(m.records, rec)
	return rec.RunID, m.flush()
}

// Finish marks the run SUCCESS with a row count, or FAILED with the error.
func (m *Manifest) Finish(runID string, rows int, runErr error) error {
	for i := range m.records {
		if m.records[i].RunID != runID {
			continue
		}
		now := time.Now().UTC()
		m.records[i].FinishedAt = &now
		if runErr != nil {
			m.records[i].Status = StatusFailed
			m.records[i].Error = runErr.Error()
		} else {
			m.records[i].Status = StatusSuccess
			m.records[i].Rows = rows
		}
		return m.flush()
	}
	return fmt.Errorf("manifest: unknown run id %s", runID)
}

// Records returns a copy of the manifest entries.
func (m *Manifest) Records() []RunRecord {
	out := make([]RunRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Manifest) flush() error {
	data, err := json.MarshalIndent(m.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}
