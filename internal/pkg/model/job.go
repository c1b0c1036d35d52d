package model

import (
	"time"
)

// JobStatus is the terminal state of a load job, as recorded in the job ledger.
type JobStatus string

const (
	// JobCompleted means the job wrote every feature it was given.
	JobCompleted JobStatus = "COMPLETED"
	// JobInterrupted means the job ended early, the ledger row carries the resume offset.
	JobInterrupted JobStatus = "INTERRUPTED"
)

// FailReason classifies a quarantined feature.
type FailReason string

const (
	// ReasonRowTooLarge marks a feature whose encoded geometry exceeds the warehouse row size limit.
	ReasonRowTooLarge FailReason = "ROW_EXCEEDS_SIZE_LIMIT"
	// ReasonSchemaMismatch marks a feature whose property keys differ from the layer schema.
	ReasonSchemaMismatch FailReason = "SCHEMAS_DONT_MATCH"
)

// LoadJob is one ledger entry: a single append of a feature range into a table.
type LoadJob struct {
	SourcePath          string    `json:"sourcePath" validate:"required"`
	LayerName           string    `json:"layerName"`
	TableID             TableID   `json:"tableId"`
	InputFeatureCount   int       `json:"inputFeatureCount"`
	JobSize             int       `json:"jobSize" validate:"required,min=1"`
	JobCount            int       `json:"jobCount" validate:"required,min=1"`
	StartAt             int       `json:"startAt" validate:"min=0"`
	ValidateFeatures    bool      `json:"validateFeatures"`
	InvalidFeatureCount int       `json:"invalidFeatureCount"`
	InsertedFeatures    int       `json:"insertedFeatures"`
	TableRowCount       int64     `json:"tableRowCount"`
	StartTime           time.Time `json:"startTime"`
	EndTime             time.Time `json:"endTime"`
	Status              JobStatus `json:"status"`
}

// Duration is the wall time between job start and end.
func (j LoadJob) Duration() time.Duration {
	if j.EndTime.IsZero() || j.StartTime.IsZero() {
		return 0
	}
	return j.EndTime.Sub(j.StartTime)
}

// FailureRecord is one quarantined feature, stored next to the job ledger.
type FailureRecord struct {
	SourcePath string     `json:"sourcePath"`
	LayerName  string     `json:"layerName"`
	TableID    TableID    `json:"tableId"`
	Row        int        `json:"row"`
	Properties string     `json:"properties"`
	FailTime   time.Time  `json:"failTime"`
	Reason     FailReason `json:"reason"`
}
