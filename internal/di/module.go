package di

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/courierlabs/podproof/internal/adapter/cloudinary"
	"github.com/courierlabs/podproof/internal/adapter/graphdrive"
	"github.com/courierlabs/podproof/internal/adapter/shopify"
	"github.com/courierlabs/podproof/internal/app"
	"github.com/courierlabs/podproof/internal/config"
	"github.com/courierlabs/podproof/internal/logger"
	"github.com/courierlabs/podproof/internal/server/http/handlers"
	"github.com/courierlabs/podproof/internal/server/http/router"
	"github.com/courierlabs/podproof/internal/storage/postgres"
	"github.com/courierlabs/podproof/internal/usecase"
)

// Module assembles the full application graph. The storage backend and
// write-back shape are resolved here, once, from configuration; the
// orchestrator only ever sees the interfaces.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		shopify.Module,
		postgres.Module,
		fx.Provide(
			func(client *shopify.Client) usecase.OrderLocator { return client },
			newUploader,
			newRecorder,
		),
		usecase.Module,
		fx.Provide(func(facade *app.ProofFacade) handlers.ProofFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

type backendParams struct {
	fx.In

	Config *config.Config
	Client *shopify.Client
	Logger *slog.Logger
}

func newUploader(p backendParams) (usecase.BlobUploader, error) {
	cfg := p.Config
	switch cfg.StorageBackend {
	case config.BackendCloudinary:
		return cloudinary.NewClient(
			cloudinary.DefaultBaseURL,
			cfg.CloudinaryCloudName,
			cfg.CloudinaryAPIKey,
			cfg.CloudinaryAPISecret,
			cfg.UpstreamTimeout,
			p.Logger,
		)
	case config.BackendGraphDrive:
		tokens, err := graphdrive.NewClientCredentials(
			graphdrive.DefaultTokenBaseURL,
			cfg.GraphTenantID,
			cfg.GraphClientID,
			cfg.GraphClientSecret,
			cfg.TokenCacheTTL,
			cfg.UpstreamTimeout,
		)
		if err != nil {
			return nil, err
		}
		return graphdrive.NewClient(
			graphdrive.DefaultBaseURL,
			cfg.GraphDriveFolder,
			tokens,
			cfg.UpstreamTimeout,
			p.Logger,
		)
	case config.BackendShopify:
		return shopify.NewFileUploader(p.Client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newRecorder(p backendParams) (usecase.ProofRecorder, error) {
	cfg := p.Config
	switch cfg.RecordMode {
	case config.RecordComment:
		return shopify.NewCommentRecorder(p.Client, cfg.CommentFormat, cfg.CommentEncoding), nil
	case config.RecordMetafield:
		return shopify.NewMetafieldRecorder(p.Client, cfg.MetafieldNamespace), nil
	default:
		return nil, fmt.Errorf("unknown record mode %q", cfg.RecordMode)
	}
}
