package app

import (
	"context"

	"github.com/courierlabs/podproof/internal/domain/model"
	"github.com/courierlabs/podproof/internal/usecase"
)

// ProofFacade aggregates the operations exposed over HTTP.
type ProofFacade struct {
	submissions *usecase.SubmissionUseCase
	locator     usecase.OrderLocator
}

// NewProofFacade constructs ProofFacade.
func NewProofFacade(submissions *usecase.SubmissionUseCase, locator usecase.OrderLocator) *ProofFacade {
	return &ProofFacade{submissions: submissions, locator: locator}
}

// SubmitProof runs the full submission pipeline.
func (f *ProofFacade) SubmitProof(ctx context.Context, req model.SubmissionRequest) (*model.ProofURLs, error) {
	return f.submissions.SubmitProof(ctx, req)
}

// LookupOrder resolves an order without side effects, for the debug endpoint.
func (f *ProofFacade) LookupOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error) {
	return f.locator.FindOrder(ctx, orderNumber)
}
