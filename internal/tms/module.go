package tms

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"tms",
		fx.Provide(NewPipeline),
	)
}
