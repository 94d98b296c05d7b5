package charts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Chart types the dashboard builder renders.
const (
	TypeBar     = "Bar"
	TypeLine    = "Line"
	TypeScatter = "Scatter"
	TypePie     = "Pie"
)

var (
	ErrInvalidChartType = errors.New("chart type must be Bar, Line, Scatter, or Pie")
	ErrChartNotFound    = errors.New("chart not found")
	ErrDashboardMissing = errors.New("dashboard not found")
)

// Config describes one saved chart. The identifier is permanent; only the
// title may change after creation.
type Config struct {
	ID               string    `json:"id"`
	ChartTitle       string    `json:"chart_title"`
	SourceCollection string    `json:"source_collection"`
	ChartType        string    `json:"chart_type"`
	XColumn          string    `json:"x_column"`
	YColumn          string    `json:"y_column"`
	ColorColumn      string    `json:"color_column,omitempty"`
	FilterPredicate  string    `json:"filter_predicate,omitempty"`
	CreatedByEmail   string    `json:"created_by_email"`
	CreatedAt        time.Time `json:"created_at"`
}

// Dashboard is an ordered list of chart identifiers keyed by name.
type Dashboard struct {
	Name           string    `json:"name"`
	SelectedCharts []string  `json:"selected_charts"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Registry persists charts and dashboards in the document store.
type Registry struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRegistry(st *store.Store, logger *zap.Logger) *Registry {
	return &Registry{
		store:  st,
		logger: logger.Named("charts"),
		now:    time.Now,
	}
}

// CreateChart saves a new chart and returns its generated identifier.
func (r *Registry) CreateChart(ctx context.Context, cfg Config) (string, error) {
	if !validChartType(cfg.ChartType) {
		return "", fmt.Errorf("%w: %q", ErrInvalidChartType, cfg.ChartType)
	}

	cfg.ID = uuid.NewString()
	cfg.CreatedAt = r.now().UTC()

	if err := r.store.Upsert(ctx, store.CollectionCharts,
		store.Filter{"id": cfg.ID},
		chartDocument(cfg),
	); err != nil {
		return "", err
	}
	return cfg.ID, nil
}

// RenameChart updates a chart's title. Identity never changes.
func (r *Registry) RenameChart(ctx context.Context, chartID, title string) error {
	existing, err := r.chartByID(ctx, chartID)
	if err != nil {
		return err
	}
	existing.ChartTitle = title

	doc := chartDocument(existing)
	doc["updated_at"] = r.now().UTC()
	return r.store.Upsert(ctx, store.CollectionCharts, store.Filter{"id": chartID}, doc)
}

// DeleteChart removes a chart. Dashboards still listing it skip it at render.
func (r *Registry) DeleteChart(ctx context.Context, chartID string) error {
	return r.store.Delete(ctx, store.CollectionCharts, store.Filter{"id": chartID})
}

// ListCharts returns every saved chart.
func (r *Registry) ListCharts(ctx context.Context) ([]Config, error) {
	docs, err := r.store.Read(ctx, store.CollectionCharts, nil)
	if err != nil {
		return nil, err
	}
	charts := make([]Config, 0, len(docs))
	for _, doc := range docs {
		charts = append(charts, chartFromDocument(doc))
	}
	return charts, nil
}

// SaveDashboard creates or replaces a dashboard; the name is the key.
func (r *Registry) SaveDashboard(ctx context.Context, name string, chartIDs []string) error {
	now := r.now().UTC()
	doc := store.Document{
		"name":            name,
		"selected_charts": chartIDs,
		"updated_at":      now,
	}

	existing, err := r.store.Read(ctx, store.CollectionDashboards, store.Filter{"name": name})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		doc["created_at"] = now
	}

	return r.store.Upsert(ctx, store.CollectionDashboards, store.Filter{"name": name}, doc)
}

// DeleteDashboard removes a dashboard by name.
func (r *Registry) DeleteDashboard(ctx context.Context, name string) error {
	return r.store.Delete(ctx, store.CollectionDashboards, store.Filter{"name": name})
}

// ResolveDashboard returns the dashboard's charts in order. Identifiers that
// no longer exist are skipped with a warning, per the referential rule.
func (r *Registry) ResolveDashboard(ctx context.Context, name string) (Dashboard, []Config, error) {
	docs, err := r.store.Read(ctx, store.CollectionDashboards, store.Filter{"name": name})
	if err != nil {
		return Dashboard{}, nil, err
	}
	if len(docs) == 0 {
		return Dashboard{}, nil, fmt.Errorf("%w: %s", ErrDashboardMissing, name)
	}

	dash := dashboardFromDocument(docs[0])
	charts := make([]Config, 0, len(dash.SelectedCharts))
	for _, chartID := range dash.SelectedCharts {
		chart, err := r.chartByID(ctx, chartID)
		if errors.Is(err, ErrChartNotFound) {
			r.logger.Warn("dashboard references a deleted chart, skipping",
				zap.String("dashboard", name),
				zap.String("chart", chartID),
			)
			continue
		}
		if err != nil {
			return Dashboard{}, nil, err
		}
		charts = append(charts, chart)
	}
	return dash, charts, nil
}

func (r *Registry) chartByID(ctx context.Context, chartID string) (Config, error) {
	docs, err := r.store.Read(ctx, store.CollectionCharts, store.Filter{"id": chartID})
	if err != nil {
		return Config{}, err
	}
	if len(docs) == 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrChartNotFound, chartID)
	}
	return chartFromDocument(docs[0]), nil
}

func validChartType(t string) bool {
	switch t {
	case TypeBar, TypeLine, TypeScatter, TypePie:
		return true
	}
	return false
}

func chartDocument(cfg Config) store.Document {
	return store.Document{
		"id": cfg.ID,
		"chart_config": store.Document{
			"chart_title":       cfg.ChartTitle,
			"source_collection": cfg.SourceCollection,
			"chart_type":        cfg.ChartType,
			"x_column":          cfg.XColumn,
			"y_column":          cfg.YColumn,
			"color_column":      cfg.ColorColumn,
			"filter_predicate":  cfg.FilterPredicate,
		},
		"created_by_email": cfg.CreatedByEmail,
		"created_at":       cfg.CreatedAt,
	}
}

func chartFromDocument(doc store.Document) Config {
	cfg := Config{
		ID:             asString(doc["id"]),
		CreatedByEmail: asString(doc["created_by_email"]),
	}
	if at, ok := doc["created_at"].(time.Time); ok {
		cfg.CreatedAt = at
	}
	inner, _ := doc["chart_config"].(map[string]any)
	if inner == nil {
		return cfg
	}
	cfg.ChartTitle = asString(inner["chart_title"])
	cfg.SourceCollection = asString(inner["source_collection"])
	cfg.ChartType = asString(inner["chart_type"])
	cfg.XColumn = asString(inner["x_column"])
	cfg.YColumn = asString(inner["y_column"])
	cfg.ColorColumn = asString(inner["color_column"])
	cfg.FilterPredicate = asString(inner["filter_predicate"])
	return cfg
}

func dashboardFromDocument(doc store.Document) Dashboard {
	dash := Dashboard{Name: asString(doc["name"])}
	if at, ok := doc["created_at"].(time.Time); ok {
		dash.CreatedAt = at
	}
	if at, ok := doc["updated_at"].(time.Time); ok {
		dash.UpdatedAt = at
	}
	switch ids := doc["selected_charts"].(type) {
	case []string:
		dash.SelectedCharts = append([]string(nil), ids...)
	case []any:
		for _, id := range ids {
			if s, ok := id.(string); ok {
				dash.SelectedCharts = append(dash.SelectedCharts, s)
			}
		}
	}
	return dash
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
