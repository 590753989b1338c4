package mcp

import (
	"context"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/session"
)

// DataSource abstracts the data layer for MCP tools. Both Local (stores in
// process) and HTTPClient (remote via REST API) satisfy this interface.
// Missing plans and logs are (nil, nil).
type DataSource interface {
	GetWeekPlan(ctx context.Context, key plan.Key) (*plan.WeekPlan, error)
	ListWeekPlans(ctx context.Context, playerID string) ([]plan.WeekPlan, error)
	LatestWeekPlan(ctx context.Context, playerID string) (*plan.WeekPlan, error)
	GetPlayerLog(ctx context.Context, key plan.LogKey) (*plan.PlayerLog, error)
	ListTemplates(ctx context.Context) ([]planner.TemplateInfo, error)
	PreviewTemplate(ctx context.Context, idx, week int) (*planner.TemplatePreview, error)
	BlockCatalog(ctx context.Context) (*catalog.Listing, error)
}

// Local serves MCP tools from the planner service and log store of this process.
type Local struct {
	plans *planner.Service
	logs  session.LogStore
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(plans *planner.Service, logs session.LogStore) *Local {
	return &Local{plans: plans, logs: logs}
}

func (l *Local) GetWeekPlan(ctx context.Context, key plan.Key) (*plan.WeekPlan, error) {
	return l.plans.Get(ctx, key)
}

func (l *Local) ListWeekPlans(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	return l.plans.List(ctx, playerID)
}

func (l *Local) LatestWeekPlan(ctx context.Context, playerID string) (*plan.WeekPlan, error) {
	return l.plans.Latest(ctx, playerID)
}

func (l *Local) GetPlayerLog(ctx context.Context, key plan.LogKey) (*plan.PlayerLog, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return l.logs.GetPlayerLog(ctx, key.String())
}

func (l *Local) ListTemplates(_ context.Context) ([]planner.TemplateInfo, error) {
	return planner.DescribeTemplates(l.plans.Catalog()), nil
}

func (l *Local) PreviewTemplate(_ context.Context, idx, week int) (*planner.TemplatePreview, error) {
	return planner.Preview(l.plans.Catalog(), idx, week)
}

func (l *Local) BlockCatalog(_ context.Context) (*catalog.Listing, error) {
	listing := l.plans.Catalog().Listing()
	return &listing, nil
}
