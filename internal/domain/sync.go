package domain

import "time"

// IngestResult summarizes one ingestion run against a source.
// InsertedCount always equals len(Inserted).
type IngestResult struct {
	SourceID      string        `json:"sourceId"`
	Platform      Platform      `json:"platform"`
	Fetched       int           `json:"fetched"`
	InsertedCount int           `json:"insertedCount"`
	Inserted      []Premise     `json:"insertedItems"`
	Duplicates    int           `json:"duplicates"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration"`
}

// SyncStats holds statistics about a sync over all registered sources.
type SyncStats struct {
	Sources  int
	Inserted int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Analysis is a fetched and normalized preview of a source that was not persisted.
type Analysis struct {
	Source   SourceInfo `json:"source"`
	Premises []Premise  `json:"premises"`
	Failed   int        `json:"failed"`
}

// ItemPreview is a single fetched and normalized post or video that was not persisted.
type ItemPreview struct {
	Source  SourceInfo `json:"source"`
	Premise Premise    `json:"premise"`
}
