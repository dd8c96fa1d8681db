package ingestion

import (
	"encoding/json"
	"fmt"
	"time"
)

// Summary counts the outcome of every record of a batch.
type Summary struct {
	Total      int            `json:"total"`
	Added      int            `json:"added"`
	Duplicates int            `json:"duplicates"`
	Rejected   int            `json:"rejected"`
	Failed     int            `json:"failed"`
	Errors     []*RecordError `json:"errors,omitempty"`
	Rejections []Rejection    `json:"rejections,omitempty"`
	StartedAt  string         `json:"started_at"`            // RFC3339 format
	FinishedAt string         `json:"finished_at,omitempty"` // RFC3339 format
}

// Rejection records a record refused by the normalizer's policy.
type Rejection struct {
	Index  int    `json:"index"`
	URL    string `json:"job_url,omitempty"`
	Reason string `json:"reason"`
}

func newSummary(total int) *Summary {
	return &Summary{
		Total:     total,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Summary) finish() {
	s.FinishedAt = time.Now().UTC().Format(time.RFC3339)
}

// Processed is the number of records with a final outcome.
func (s *Summary) Processed() int {
	return s.Added + s.Duplicates + s.Rejected + s.Failed
}

// String renders the one-line form printed by the CLI.
func (s *Summary) String() string {
	return fmt.Sprintf("added=%d duplicates=%d rejected=%d failed=%d",
		s.Added, s.Duplicates, s.Rejected, s.Failed)
}

// ToJSON marshals the summary to pretty-printed JSON.
func (s *Summary) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}
	return jsonBytes, nil
}
