package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrOrderNotFound      = errors.New("order not found")
)

// Stage identifies which upstream interaction produced a failure.
type Stage string

const (
	StageLookup Stage = "lookup"
	StageAuth   Stage = "auth"
	StageUpload Stage = "upload"
	StageRecord Stage = "record"
)

// UpstreamError wraps a failed call to an external system, keeping the
// upstream status and response body for operator diagnosis.
type UpstreamError struct {
	Stage  Stage
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed: upstream status %d: %s", e.Stage, e.Status, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Stage)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError builds an UpstreamError for a rejected upstream response.
func NewUpstreamError(stage Stage, status int, body string) *UpstreamError {
	return &UpstreamError{Stage: stage, Status: status, Body: body}
}

// WrapUpstream builds an UpstreamError for a transport-level failure.
func WrapUpstream(stage Stage, err error) *UpstreamError {
	return &UpstreamError{Stage: stage, Err: err}
}

// AsUpstream extracts an UpstreamError from an error chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
