package carrier

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"carrier",
		fx.Provide(NewTokenCache),
		fx.Provide(NewFedEx),
		fx.Provide(NewEstes),
	)
}
