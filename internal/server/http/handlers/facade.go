package handlers

import (
	"context"

	"github.com/courierlabs/podproof/internal/domain/model"
)

// ProofFacade describes the submission capabilities required by handlers.
type ProofFacade interface {
	SubmitProof(ctx context.Context, req model.SubmissionRequest) (*model.ProofURLs, error)
	LookupOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error)
}
