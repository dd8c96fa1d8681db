package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
)

// errDuplicateRace rolls back a unit whose posting URL was stored by someone
// else between the duplicate check and the insert.
var errDuplicateRace = errors.New("job url stored concurrently")

// Stages of a record, reported in RecordError and log fields.
const (
	StageDedup           = "dedup"
	StageNormalize       = "normalize"
	StageResolveCompany  = "resolve_company"
	StageResolveLocation = "resolve_location"
	StageInsertPosting   = "insert_posting"
	StageLinkSkills      = "link_skills"
	StageCommit          = "commit"
)

// RecordError reports the failure of one record of a batch.
type RecordError struct {
	Index int
	URL   string
	Stage string
	Err   error
}

func (e *RecordError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("record %d (%s) failed at %s: %v", e.Index, e.URL, e.Stage, e.Err)
	}
	return fmt.Sprintf("record %d failed at %s: %v", e.Index, e.Stage, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error for a JSON summary.
func (e *RecordError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int    `json:"index"`
		URL   string `json:"job_url,omitempty"`
		Stage string `json:"stage"`
		Error string `json:"error"`
	}{e.Index, e.URL, e.Stage, e.Err.Error()})
}

// BatchError reports a batch stopped before its last record. Records
// processed before the stop remain committed.
type BatchError struct {
	Processed int
	Total     int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch stopped after %d of %d records: %v", e.Processed, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
