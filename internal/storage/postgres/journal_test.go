package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	"github.com/courierlabs/podproof/internal/domain/model"
)

func newMockJournal(t *testing.T) (*Journal, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	journal := &Journal{pool: mock, logger: logger}
	return journal, mock
}

func sampleEntry() model.AuditEntry {
	return model.AuditEntry{
		OrderNumber:  "1001",
		CustomerName: "Jane Doe",
		Stage:        model.StageRecord,
		PhotoURL:     "https://cdn.example/1001-photo.jpg",
		SignatureURL: "https://cdn.example/1001-signature.jpg",
		Detail:       "record failed: upstream status 502: bad gateway",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInitSchema(t *testing.T) {
	journal, mock := newMockJournal(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submission_audit").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_submission_audit_order").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))

	if err := journal.initSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitSchemaFailure(t *testing.T) {
	journal, mock := newMockJournal(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submission_audit").WillReturnError(errors.New("permission denied"))

	if err := journal.initSchema(context.Background()); err == nil {
		t.Fatal("expected schema error")
	}
}

func TestAppendInsertsRow(t *testing.T) {
	journal, mock := newMockJournal(t)
	entry := sampleEntry()

	mock.ExpectExec("INSERT INTO submission_audit").
		WithArgs(entry.OrderNumber, entry.CustomerName, string(entry.Stage), entry.PhotoURL, entry.SignatureURL, entry.Detail, entry.CreatedAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))

	if err := journal.Append(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppendFailure(t *testing.T) {
	journal, mock := newMockJournal(t)
	mock.ExpectExec("INSERT INTO submission_audit").WillReturnError(errors.New("connection reset"))

	if err := journal.Append(context.Background(), sampleEntry()); err == nil {
		t.Fatal("expected append error")
	}
}

func TestNoopJournalAlwaysSucceeds(t *testing.T) {
	var journal NoopJournal
	if err := journal.Append(context.Background(), sampleEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
