package charts

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"charts",
		fx.Provide(NewRegistry),
	)
}
