package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

// PlanStore persists week plans. Reads that find nothing return (nil, nil).
type PlanStore interface {
	GetWeekPlan(ctx context.Context, id string) (*plan.WeekPlan, error)
	UpsertWeekPlan(ctx context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error)
	DeleteWeekPlan(ctx context.Context, id string) (bool, error)
	ListWeekPlans(ctx context.Context) ([]plan.WeekPlan, error)
	ListWeekPlansByPlayer(ctx context.Context, playerID string) ([]plan.WeekPlan, error)
}

// Service opens editors from stored plans and saves them back.
type Service struct {
	store   PlanStore
	catalog *catalog.Catalog
	log     *slog.Logger
	now     func() time.Time
}

func NewService(store PlanStore, c *catalog.Catalog, log *slog.Logger) *Service {
	return &Service{store: store, catalog: c, log: log, now: time.Now}
}

// Catalog returns the catalog editors are created with.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Open starts an editor for key, seeded from the stored plan when one exists.
// A failed load is logged and treated like a missing plan.
func (s *Service) Open(ctx context.Context, key plan.Key) (*Editor, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetWeekPlan(ctx, key.String())
	if err != nil {
		s.log.Error("loading week plan", "id", key.String(), "error", err)
		return NewEditor(key, nil, s.catalog), nil
	}
	if p == nil {
		return NewEditor(key, nil, s.catalog), nil
	}
	return NewEditor(key, p.Days, s.catalog), nil
}

// Save persists the editor's week as it is at the moment of the call.
// TotalRPE is recomputed from that same snapshot.
func (s *Service) Save(ctx context.Context, e *Editor) (*plan.WeekPlan, error) {
	p := plan.New(e.Key(), e.Week(), s.now())
	return s.Put(ctx, p)
}

// Put stores a whole plan, overwriting any plan with the same id.
func (s *Service) Put(ctx context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error) {
	key := p.Key()
	if err := key.Validate(); err != nil {
		return nil, err
	}
	p.ID = key.String()
	p.Recompute()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	saved, err := s.store.UpsertWeekPlan(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("saving week plan %s: %w", p.ID, err)
	}
	return saved, nil
}

// Get returns the stored plan for key, or nil.
func (s *Service) Get(ctx context.Context, key plan.Key) (*plan.WeekPlan, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.store.GetWeekPlan(ctx, key.String())
}

// Delete removes the plan for key and reports whether one existed.
func (s *Service) Delete(ctx context.Context, key plan.Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	return s.store.DeleteWeekPlan(ctx, key.String())
}

// List returns all plans, or only those of playerID when it is set.
func (s *Service) List(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	if playerID == "" {
		return s.store.ListWeekPlans(ctx)
	}
	return s.store.ListWeekPlansByPlayer(ctx, playerID)
}

// Latest returns the player's plan with the greatest week key, or nil.
func (s *Service) Latest(ctx context.Context, playerID string) (*plan.WeekPlan, error) {
	plans, err := s.store.ListWeekPlansByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	var latest *plan.WeekPlan
	for i := range plans {
		if latest == nil || plans[i].Week > latest.Week {
			latest = &plans[i]
		}
	}
	return latest, nil
}

// BlockDetail is the exercise list behind a placed block at one level.
type BlockDetail struct {
	Title     string             `json:"title"`
	BlockID   string             `json:"blockId"`
	Level     string             `json:"level"`
	Duration  int                `json:"duration"`
	Exercises []catalog.Exercise `json:"exercises"`
}

// BlockDetail resolves the exercises behind the block at index for level.
// Duration suggests the catalog default for that level, else the placed value.
func (e *Editor) BlockDetail(d plan.DayName, index int, level string) (BlockDetail, error) {
	day, err := e.day(d)
	if err != nil {
		return BlockDetail{}, err
	}
	if index < 0 || index >= len(day.Blocks) {
		return BlockDetail{}, fmt.Errorf("%w: %s[%d]", ErrNoSuchBlock, d, index)
	}
	b := day.Blocks[index]
	exs, err := e.catalog.ResolveExercises(level, b.BlockID)
	if err != nil {
		return BlockDetail{}, err
	}
	duration := b.Duration
	if def, ok := e.catalog.Lookup(b.BlockID); ok && def.DefaultDuration.IsRanged() {
		if m, ok := def.DefaultDuration.ForLevel(level); ok {
			duration = m
		}
	}
	return BlockDetail{
		Title:     fmt.Sprintf("%s - Level %s", b.Code, level),
		BlockID:   b.BlockID,
		Level:     level,
		Duration:  duration,
		Exercises: exs,
	}, nil
}
