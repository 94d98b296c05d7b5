package netsuite

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"netsuite",
		fx.Provide(NewClient),
	)
}
