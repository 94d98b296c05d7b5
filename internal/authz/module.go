package authz

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"authz",
		fx.Provide(NewResolver),
	)
}
