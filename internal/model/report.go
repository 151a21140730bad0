package model

import "time"

// RunReport summarizes one extraction run
type RunReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	InputDir   string           `json:"input_dir,omitempty"`
	Output     string           `json:"output"`
	IndexMode  string           `json:"index_mode"`
	DryRun     bool             `json:"dry_run"`
	Files      int              `json:"files"`      // Input files discovered
	Failed     int              `json:"failed"`     // Files that could not be processed
	Questions  int              `json:"questions"`  // Records extracted across all files
	New        int              `json:"new"`        // Records appended to the corpus
	Duplicates int              `json:"duplicates"` // Records already present
	Documents  []DocumentReport `json:"documents"`
}

// DocumentReport is the per-file part of a run report
type DocumentReport struct {
	File       string   `json:"file"`
	TestName   string   `json:"test_name,omitempty"`
	Questions  int      `json:"questions"`
	New        int      `json:"new"`
	Duplicates int      `json:"duplicates"`
	Accepted   []Record `json:"accepted,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Processed returns the number of files that were read successfully
func (r *RunReport) Processed() int {
	return r.Files - r.Failed
}
