package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/courierlabs/podproof/internal/config"
	"github.com/courierlabs/podproof/internal/usecase"
)

// Module wires the audit journal. Without a configured DSN the journal is a
// no-op and no connection is made.
var Module = fx.Provide(newJournal)

type journalParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

func newJournal(p journalParams) (usecase.AuditJournal, error) {
	if p.Config.DatabaseURI == "" {
		return NoopJournal{}, nil
	}

	journal, err := New(p.Ctx, p.Config.DatabaseURI, p.Logger)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			journal.Close()
			return nil
		},
	})

	return journal, nil
}
