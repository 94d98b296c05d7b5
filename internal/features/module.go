package features

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"features",
		fx.Provide(NewTracker),
	)
}
