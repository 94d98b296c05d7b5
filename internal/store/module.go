package store

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"store",
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, s *Store) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return s.Close(ctx)
				},
			})
		}),
	)
}
