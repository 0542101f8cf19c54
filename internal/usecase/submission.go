package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// OrderLocator resolves a human-entered order number to the platform order.
type OrderLocator interface {
	FindOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error)
}

// BlobUploader stores one image under a logical name and returns a publicly
// resolvable URL. Exactly one implementation is active per deployment.
type BlobUploader interface {
	Upload(ctx context.Context, image model.ImageData, logicalName string) (string, error)
}

// ProofRecorder writes proof URLs back onto a platform order.
type ProofRecorder interface {
	Record(ctx context.Context, orderID int64, customerName string, urls model.ProofURLs) error
}

// AuditJournal persists submission outcomes. Implementations must be safe to
// fail: journal errors are logged, never surfaced to the caller.
type AuditJournal interface {
	Append(ctx context.Context, entry model.AuditEntry) error
}

// SubmissionUseCase drives one proof-of-delivery submission through its
// strictly ordered pipeline: validate, locate order, upload image(s), record
// proof. Each step is a hard dependency on the previous one; there are no
// retries and no compensation for earlier side effects.
type SubmissionUseCase struct {
	locator  OrderLocator
	uploader BlobUploader
	recorder ProofRecorder
	journal  AuditJournal

	requireSignature bool
	logger           *slog.Logger
	now              func() time.Time
}

// NewSubmissionUseCase constructs SubmissionUseCase.
func NewSubmissionUseCase(
	locator OrderLocator,
	uploader BlobUploader,
	recorder ProofRecorder,
	journal AuditJournal,
	requireSignature bool,
	logger *slog.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		locator:          locator,
		uploader:         uploader,
		recorder:         recorder,
		journal:          journal,
		requireSignature: requireSignature,
		logger:           logger,
		now:              time.Now,
	}
}

// SubmitProof runs the full pipeline for one submission. Validation happens
// before any network call. An upload failure aborts the submission without
// writing anything back; a record failure after successful uploads leaves the
// images orphaned in storage, which is journaled and logged rather than
// hidden.
func (u *SubmissionUseCase) SubmitProof(ctx context.Context, req model.SubmissionRequest) (*model.ProofURLs, error) {
	photo, signature, err := u.validate(req)
	if err != nil {
		return nil, err
	}

	order, err := u.locator.FindOrder(ctx, req.OrderNumber)
	if err != nil {
		u.appendJournal(ctx, req, model.StageLookup, model.ProofURLs{}, err)
		return nil, err
	}

	stamp := u.now()
	urls := model.ProofURLs{}

	urls.PhotoURL, err = u.uploader.Upload(ctx, *photo, ObjectName(req.OrderNumber, "photo", stamp))
	if err != nil {
		u.appendJournal(ctx, req, model.StageUpload, urls, err)
		return nil, err
	}

	if signature != nil {
		urls.SignatureURL, err = u.uploader.Upload(ctx, *signature, ObjectName(req.OrderNumber, "signature", stamp))
		if err != nil {
			u.appendJournal(ctx, req, model.StageUpload, urls, err)
			return nil, err
		}
	}

	if err := u.recorder.Record(ctx, order.ID, req.CustomerName, urls); err != nil {
		u.logger.Error("proof uploaded but not recorded",
			slog.String("order_number", req.OrderNumber),
			slog.Int64("order_id", order.ID),
			slog.String("photo_url", urls.PhotoURL),
			slog.String("signature_url", urls.SignatureURL),
			slog.String("error", err.Error()),
		)
		u.appendJournal(ctx, req, model.StageRecord, urls, err)
		return nil, err
	}

	u.appendJournal(ctx, req, model.StageDone, urls, nil)
	return &urls, nil
}

// validate checks required fields and decodes embedded images. A provided
// signature is decoded and uploaded even when the deployment does not
// require one.
func (u *SubmissionUseCase) validate(req model.SubmissionRequest) (photo, signature *model.ImageData, err error) {
	if strings.TrimSpace(req.OrderNumber) == "" || strings.TrimSpace(req.CustomerName) == "" || req.PhotoDataURL == "" {
		return nil, nil, domainErrors.ErrMissingFields
	}
	if u.requireSignature && req.SignatureDataURL == "" {
		return nil, nil, domainErrors.ErrMissingFields
	}

	p, err := DecodeDataURL(req.PhotoDataURL)
	if err != nil {
		return nil, nil, err
	}
	photo = &p

	if req.SignatureDataURL != "" {
		s, err := DecodeDataURL(req.SignatureDataURL)
		if err != nil {
			return nil, nil, err
		}
		signature = &s
	}

	return photo, signature, nil
}

func (u *SubmissionUseCase) appendJournal(ctx context.Context, req model.SubmissionRequest, stage model.SubmissionStage, urls model.ProofURLs, cause error) {
	if u.journal == nil {
		return
	}

	entry := model.AuditEntry{
		OrderNumber:  req.OrderNumber,
		CustomerName: req.CustomerName,
		Stage:        stage,
		PhotoURL:     urls.PhotoURL,
		SignatureURL: urls.SignatureURL,
		CreatedAt:    u.now(),
	}
	if cause != nil {
		entry.Detail = cause.Error()
	}

	if err := u.journal.Append(ctx, entry); err != nil {
		u.logger.Error("audit journal append failed", slog.String("error", err.Error()))
	}
}
