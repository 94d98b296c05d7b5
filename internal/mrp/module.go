package mrp

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"mrp",
		fx.Provide(NewEngine),
	)
}
