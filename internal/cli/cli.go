package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/treyhulse/kcsf-ops/internal/authz"
	"github.com/treyhulse/kcsf-ops/internal/carrier"
	"github.com/treyhulse/kcsf-ops/internal/charts"
	"github.com/treyhulse/kcsf-ops/internal/features"
	"github.com/treyhulse/kcsf-ops/internal/mrp"
	"github.com/treyhulse/kcsf-ops/internal/tms"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const permissionViolation = "You do not have permission to view this page. Contact an administrator."

// Runner is the operator entry point: one-shot subcommands that exercise the
// integration substrate the dashboard pages sit on.
type Runner struct {
	logger   *zap.Logger
	authz    *authz.Resolver
	pipeline *tms.Pipeline
	mrp      *mrp.Engine
	charts   *charts.Registry
	features *features.Tracker
	estes    *carrier.Estes
}

func NewRunner(
	logger *zap.Logger,
	resolver *authz.Resolver,
	pipeline *tms.Pipeline,
	engine *mrp.Engine,
	registry *charts.Registry,
	tracker *features.Tracker,
	estes *carrier.Estes,
) *Runner {
	return &Runner{
		logger:   logger.Named("cli"),
		authz:    resolver,
		pipeline: pipeline,
		mrp:      engine,
		charts:   registry,
		features: tracker,
		estes:    estes,
	}
}

func (r *Runner) Execute() error {
	fs := flag.NewFlagSet("kcsf-ops", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email   = fs.String("email", "", "Operator email (used for page access checks)")
		asJSON  = fs.Bool("json", false, "Output JSON format")
		orderID = fs.String("order", "", "Sales order internal id")
		service = fs.String("service", "", "Carrier service type to write back")
		city    = fs.String("city", "", "Destination city override")
		state   = fs.String("state", "", "Destination state override")
		zip     = fs.String("zip", "", "Destination postal code override")
		country = fs.String("country", "", "Destination country code override")
		weight  = fs.Float64("weight", 0, "Package weight override, pounds")
		max     = fs.Int("max", tms.DefaultMaxOptions, "Maximum rate options to keep")
		claim   = fs.String("claim", "", "Claim number to track")
		status  = fs.String("status", "", "Feature status filter")
		name    = fs.String("name", "", "Dashboard name")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <orders|quote|select|mrp|claim-track|dashboard|features|access>\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one command is required")
	}
	command := fs.Arg(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	switch command {
	case "orders":
		return r.withAccess(ctx, *email, "TMS", func() error {
			rows, err := r.pipeline.ListOpenOrders(ctx)
			if err != nil {
				return err
			}
			return r.print(rows, *asJSON)
		})
	case "quote":
		return r.withAccess(ctx, *email, "TMS", func() error {
			if *orderID == "" {
				return fmt.Errorf("-order is required")
			}
			options, err := r.pipeline.Quote(ctx, *orderID, overrides(*city, *state, *zip, *country, *weight), *max)
			if err != nil {
				return err
			}
			return r.printOptions(options, *asJSON)
		})
	case "select":
		return r.withAccess(ctx, *email, "TMS", func() error {
			if *orderID == "" || *service == "" {
				return fmt.Errorf("-order and -service are required")
			}
			options, err := r.pipeline.Quote(ctx, *orderID, overrides(*city, *state, *zip, *country, *weight), tms.MaxOptionsLimit)
			if err != nil {
				return err
			}
			for _, option := range options {
				if option.ServiceType == *service {
					return r.pipeline.WriteBack(ctx, *orderID, option)
				}
			}
			return fmt.Errorf("service %s is not among the quoted options", *service)
		})
	case "mrp":
		return r.withAccess(ctx, *email, "MRP", func() error {
			rows, err := r.mrp.Snapshot(ctx)
			if err != nil {
				return err
			}
			return r.print(rows, *asJSON)
		})
	case "claim-track":
		return r.withAccess(ctx, *email, "TMS", func() error {
			if *claim == "" {
				return fmt.Errorf("-claim is required")
			}
			status, err := r.estes.TrackClaim(ctx, *claim)
			if err != nil {
				return err
			}
			return r.print(status, *asJSON)
		})
	case "dashboard":
		return r.withAccess(ctx, *email, "Dashboard Builder", func() error {
			if *name == "" {
				return fmt.Errorf("-name is required")
			}
			dash, resolved, err := r.charts.ResolveDashboard(ctx, *name)
			if err != nil {
				return err
			}
			return r.print(map[string]any{"dashboard": dash, "charts": resolved}, *asJSON)
		})
	case "features":
		return r.withAccess(ctx, *email, "Admin", func() error {
			requests, err := r.features.List(ctx, *status)
			if err != nil {
				return err
			}
			return r.print(requests, *asJSON)
		})
	case "access":
		roles, err := r.authz.RolesOf(ctx, *email)
		if err != nil {
			return err
		}
		return r.print(map[string]any{"email": *email, "roles": roles}, *asJSON)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// withAccess gates a command the way pages gate themselves: deny renders the
// fixed violation message and stops.
func (r *Runner) withAccess(ctx context.Context, email, page string, run func() error) error {
	allowed, err := r.authz.Access(ctx, email, page)
	if err != nil {
		return err
	}
	if !allowed {
		fmt.Fprintln(os.Stdout, permissionViolation)
		return nil
	}
	return run()
}

func (r *Runner) print(v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintf(os.Stdout, "%+v\n", v)
	return nil
}

func (r *Runner) printOptions(options []tms.RateOption, asJSON bool) error {
	if asJSON {
		return r.print(options, true)
	}
	for i, option := range options {
		mapped := option.Method.Display
		if !option.Mapped {
			mapped = "Unknown ID"
		}
		fmt.Fprintf(os.Stdout, "%d. %-30s %10s %s  [%s]\n",
			i+1, option.ServiceType, option.NetCharge.StringFixed(2), option.Currency, mapped)
	}
	if len(options) == 0 {
		fmt.Fprintln(os.Stdout, "no rate options returned")
	}
	return nil
}

func overrides(city, state, zip, country string, weight float64) tms.Overrides {
	o := tms.Overrides{
		City:        strings.TrimSpace(city),
		State:       strings.TrimSpace(state),
		PostalCode:  strings.TrimSpace(zip),
		CountryCode: strings.TrimSpace(country),
	}
	if weight > 0 {
		o.WeightLbs = decimal.NewFromFloat(weight)
	}
	return o
}
