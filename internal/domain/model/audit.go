package model

import "time"

// SubmissionStage names how far a submission progressed before finishing
// or failing.
type SubmissionStage string

const (
	StageValidation SubmissionStage = "validation"
	StageLookup     SubmissionStage = "lookup"
	StageUpload     SubmissionStage = "upload"
	StageRecord     SubmissionStage = "record"
	StageDone       SubmissionStage = "done"
)

// AuditEntry is one journal row describing the outcome of a submission
// attempt. Its main purpose is making the "uploaded but never recorded"
// state visible to operators.
type AuditEntry struct {
	OrderNumber  string
	CustomerName string
	Stage        SubmissionStage
	PhotoURL     string
	SignatureURL string
	Detail       string
	CreatedAt    time.Time
}
