package test

import (
	"context"
	"sync"

	"github.com/courierlabs/podproof/internal/domain/model"
)

// LocatorStub provides controllable order lookup behaviour.
type LocatorStub struct {
	FindFn func(context.Context, string) (*model.OrderRecord, error)

	mu    sync.Mutex
	calls []string
}

// FindOrder records the call and delegates to FindFn or returns a default order.
func (s *LocatorStub) FindOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, orderNumber)
	s.mu.Unlock()

	if s.FindFn != nil {
		return s.FindFn(ctx, orderNumber)
	}
	return &model.OrderRecord{ID: 555, Number: orderNumber}, nil
}

// Calls returns the lookup arguments seen so far.
func (s *LocatorStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// UploadCall captures one blob upload invocation.
type UploadCall struct {
	Image model.ImageData
	Name  string
}

// UploaderStub provides controllable upload behaviour and records calls.
type UploaderStub struct {
	UploadFn func(context.Context, model.ImageData, string) (string, error)

	mu    sync.Mutex
	calls []UploadCall
}

// Upload records the call and delegates to UploadFn or returns a synthetic URL.
func (s *UploaderStub) Upload(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, UploadCall{Image: image, Name: logicalName})
	s.mu.Unlock()

	if s.UploadFn != nil {
		return s.UploadFn(ctx, image, logicalName)
	}
	return "https://cdn.example/" + logicalName + image.Ext(), nil
}

// Calls returns the uploads seen so far.
func (s *UploaderStub) Calls() []UploadCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadCall(nil), s.calls...)
}

// RecordCall captures one proof write-back invocation.
type RecordCall struct {
	OrderID      int64
	CustomerName string
	URLs         model.ProofURLs
}

// RecorderStub provides controllable write-back behaviour and records calls.
type RecorderStub struct {
	RecordFn func(context.Context, int64, string, model.ProofURLs) error

	mu    sync.Mutex
	calls []RecordCall
}

// Record records the call and delegates to RecordFn or succeeds.
func (s *RecorderStub) Record(ctx context.Context, orderID int64, customerName string, urls model.ProofURLs) error {
	s.mu.Lock()
	s.calls = append(s.calls, RecordCall{OrderID: orderID, CustomerName: customerName, URLs: urls})
	s.mu.Unlock()

	if s.RecordFn != nil {
		return s.RecordFn(ctx, orderID, customerName, urls)
	}
	return nil
}

// Calls returns the write-backs seen so far.
func (s *RecorderStub) Calls() []RecordCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordCall(nil), s.calls...)
}

// JournalStub records appended audit entries.
type JournalStub struct {
	AppendFn func(context.Context, model.AuditEntry) error

	mu      sync.Mutex
	entries []model.AuditEntry
}

// Append records the entry and delegates to AppendFn or succeeds.
func (s *JournalStub) Append(ctx context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	if s.AppendFn != nil {
		return s.AppendFn(ctx, entry)
	}
	return nil
}

// Entries returns the journaled entries so far.
func (s *JournalStub) Entries() []model.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditEntry(nil), s.entries...)
}

// ProofFacadeStub provides controllable behaviour for HTTP handlers.
type ProofFacadeStub struct {
	SubmitFn func(context.Context, model.SubmissionRequest) (*model.ProofURLs, error)
	LookupFn func(context.Context, string) (*model.OrderRecord, error)
}

// SubmitProof delegates to SubmitFn or returns synthetic URLs.
func (s ProofFacadeStub) SubmitProof(ctx context.Context, req model.SubmissionRequest) (*model.ProofURLs, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, req)
	}
	return &model.ProofURLs{PhotoURL: "https://cdn.example/photo.jpg"}, nil
}

// LookupOrder delegates to LookupFn or returns a default order.
func (s ProofFacadeStub) LookupOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error) {
	if s.LookupFn != nil {
		return s.LookupFn(ctx, orderNumber)
	}
	return &model.OrderRecord{ID: 555, Number: orderNumber, CustomerName: "Jane Doe"}, nil
}
