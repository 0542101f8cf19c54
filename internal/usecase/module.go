package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/courierlabs/podproof/internal/config"
)

// Module provides the submission use case to the fx container.
var Module = fx.Provide(newSubmissionUseCase)

type useCaseParams struct {
	fx.In

	Locator  OrderLocator
	Uploader BlobUploader
	Recorder ProofRecorder
	Journal  AuditJournal
	Config   *config.Config
	Logger   *slog.Logger
}

func newSubmissionUseCase(p useCaseParams) *SubmissionUseCase {
	return NewSubmissionUseCase(p.Locator, p.Uploader, p.Recorder, p.Journal, p.Config.RequireSignature, p.Logger)
}
