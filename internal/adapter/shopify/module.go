package shopify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/courierlabs/podproof/internal/config"
)

// Module exposes the Shopify admin client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(
		p.Config.ShopifyDomain,
		p.Config.ShopifyToken,
		p.Config.ShopifyAPIVersion,
		p.Config.OrderLookupKey,
		p.Config.UpstreamTimeout,
		p.Logger,
	)
}
