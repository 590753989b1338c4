package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
)

// memStore keeps plans and logs in memory.
type memStore struct {
	mu    sync.Mutex
	plans map[string]plan.WeekPlan
	logs  map[string]plan.PlayerLog
}

func newMemStore() *memStore {
	return &memStore{plans: map[string]plan.WeekPlan{}, logs: map[string]plan.PlayerLog{}}
}

func (m *memStore) GetWeekPlan(_ context.Context, id string) (*plan.WeekPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, nil
	}
	p.Days = p.Days.Clone()
	return &p, nil
}

func (m *memStore) UpsertWeekPlan(_ context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *p
	out.Days = p.Days.Clone()
	if old, ok := m.plans[p.ID]; ok {
		out.CreatedAt = old.CreatedAt
	}
	m.plans[p.ID] = out
	return &out, nil
}

func (m *memStore) DeleteWeekPlan(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.plans[id]
	delete(m.plans, id)
	return ok, nil
}

func (m *memStore) ListWeekPlans(ctx context.Context) ([]plan.WeekPlan, error) {
	return m.list(func(plan.WeekPlan) bool { return true }), nil
}

func (m *memStore) ListWeekPlansByPlayer(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	return m.list(func(p plan.WeekPlan) bool { return p.PlayerID == playerID }), nil
}

func (m *memStore) list(keep func(plan.WeekPlan) bool) []plan.WeekPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.WeekPlan
	for _, p := range m.plans {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) GetPlayerLog(_ context.Context, id string) (*plan.PlayerLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *memStore) UpsertPlayerLog(_ context.Context, id string, entries plan.Entries, updatedAt time.Time) (*plan.PlayerLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := plan.PlayerLog{ID: id, Entries: entries.Clone(), UpdatedAt: updatedAt}
	m.logs[id] = l
	return &l, nil
}

func day(blocks ...catalog.TemplateBlock) catalog.TemplateDay {
	return catalog.TemplateDay{Blocks: blocks}
}

func testCatalog() *catalog.Catalog {
	doc := catalog.TemplateDocument{
		Templates: []catalog.Template{
			{
				Name:       "Aufbau",
				LevelRange: "1-6",
				Weeks: []catalog.TemplateWeek{
					{TotalRPE: 200, Days: map[plan.DayName]catalog.TemplateDay{
						plan.Monday:   day(catalog.TemplateBlock{BlockID: "ukk", RPE: 7, Duration: 30}),
						plan.Saturday: {Type: plan.DayMatch, Intensity: "hoch"},
					}},
					{Days: map[plan.DayName]catalog.TemplateDay{
						plan.Tuesday: day(catalog.TemplateBlock{BlockID: "okk", RPE: 6, Duration: 25}),
					}},
				},
			},
			{
				Name: "Einzel",
				Weeks: []catalog.TemplateWeek{
					{Days: map[plan.DayName]catalog.TemplateDay{
						plan.Wednesday: day(catalog.TemplateBlock{BlockID: "bh1", RPE: 3, Duration: 10}),
					}},
				},
			},
		},
	}
	return catalog.New(doc, &catalog.ExerciseDocument{
		Levels: map[string]catalog.LevelPlan{
			"3": {
				LowerBody: map[string][]catalog.Exercise{
					"strengthA": {{ID: "squat", Name: "Kniebeuge"}},
					"strengthB": {{ID: "lunge", Name: "Ausfallschritt"}},
				},
			},
		},
	})
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	store := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(planner.NewService(store, testCatalog(), log), store, 0, log)
	t.Cleanup(s.Close)
	return s, store
}

// do sends a JSON request through the full router and returns the recorder.
func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}

var _ http.Handler = (*Server)(nil)
