package internal

import (
	"context"

	"github.com/treyhulse/kcsf-ops/internal/authz"
	"github.com/treyhulse/kcsf-ops/internal/carrier"
	"github.com/treyhulse/kcsf-ops/internal/charts"
	"github.com/treyhulse/kcsf-ops/internal/cli"
	"github.com/treyhulse/kcsf-ops/internal/config"
	"github.com/treyhulse/kcsf-ops/internal/features"
	"github.com/treyhulse/kcsf-ops/internal/logging"
	"github.com/treyhulse/kcsf-ops/internal/mrp"
	"github.com/treyhulse/kcsf-ops/internal/netsuite"
	"github.com/treyhulse/kcsf-ops/internal/shopify"
	"github.com/treyhulse/kcsf-ops/internal/store"
	"github.com/treyhulse/kcsf-ops/internal/tms"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		netsuite.Module(),
		carrier.Module(),
		store.Module(),
		authz.Module(),
		tms.Module(),
		mrp.Module(),
		charts.Module(),
		features.Module(),
		shopify.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
