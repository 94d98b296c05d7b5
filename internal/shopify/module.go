package shopify

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"shopify",
		fx.Provide(NewClient),
	)
}
