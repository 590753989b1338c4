package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
)

// fakeSource serves one stored plan and records the keys it was asked for.
type fakeSource struct {
	plan      *plan.WeekPlan
	err       error
	gotKey    plan.Key
	gotLatest string
	gotLog    plan.LogKey
	gotWeek   int
}

func (f *fakeSource) GetWeekPlan(_ context.Context, key plan.Key) (*plan.WeekPlan, error) {
	f.gotKey = key
	return f.plan, f.err
}

func (f *fakeSource) ListWeekPlans(_ context.Context, _ string) ([]plan.WeekPlan, error) {
	if f.plan == nil {
		return nil, f.err
	}
	return []plan.WeekPlan{*f.plan}, f.err
}

func (f *fakeSource) LatestWeekPlan(_ context.Context, playerID string) (*plan.WeekPlan, error) {
	f.gotLatest = playerID
	return f.plan, f.err
}

func (f *fakeSource) GetPlayerLog(_ context.Context, key plan.LogKey) (*plan.PlayerLog, error) {
	f.gotLog = key
	return nil, f.err
}

func (f *fakeSource) ListTemplates(_ context.Context) ([]planner.TemplateInfo, error) {
	return []planner.TemplateInfo{{Index: 0, Name: "Aufbau"}}, f.err
}

func (f *fakeSource) PreviewTemplate(_ context.Context, _, week int) (*planner.TemplatePreview, error) {
	f.gotWeek = week
	return &planner.TemplatePreview{Template: "Aufbau", Week: week, Days: plan.NewWeek()}, f.err
}

func (f *fakeSource) BlockCatalog(_ context.Context) (*catalog.Listing, error) {
	l := catalog.Builtin().Listing()
	return &l, f.err
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content = %T, want text", res.Content[0])
	}
	return tc.Text
}

// TestResolveWeek verifies week keys come from an explicit week or a date.
func TestResolveWeek(t *testing.T) {
	tests := []struct {
		week, date, want string
	}{
		{"2024-W10", "2021-01-01", "2024-W10"},
		{"", "2021-01-01", "2020-W53"},
		{"", "2024-03-06T10:30:00Z", "2024-W10"},
		{"", "", ""},
	}
	for _, tt := range tests {
		got, err := resolveWeek(tt.week, tt.date)
		if err != nil {
			t.Fatalf("resolveWeek(%q, %q): %v", tt.week, tt.date, err)
		}
		if got != tt.want {
			t.Errorf("resolveWeek(%q, %q) = %q, want %q", tt.week, tt.date, got, tt.want)
		}
	}

	if _, err := resolveWeek("", "not-a-date"); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestGetWeekPlanLatest verifies the latest plan is used when no week is given.
func TestGetWeekPlanLatest(t *testing.T) {
	ds := &fakeSource{plan: testPlan()}
	res, err := newHandlers(ds).getWeekPlan(context.Background(), callRequest(map[string]any{"player": "p1"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.gotLatest != "p1" {
		t.Errorf("latest requested for %q, want p1", ds.gotLatest)
	}

	var p plan.WeekPlan
	if err := json.Unmarshal([]byte(resultText(t, res)), &p); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if p.ID != "p1_2024-W10" {
		t.Errorf("id = %q, want p1_2024-W10", p.ID)
	}
}

// TestGetWeekPlanByDate verifies a date is turned into its ISO week.
func TestGetWeekPlanByDate(t *testing.T) {
	ds := &fakeSource{plan: testPlan()}
	res, err := newHandlers(ds).getWeekPlan(context.Background(), callRequest(map[string]any{"player": "p1", "date": "2024-03-06"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.gotKey != (plan.Key{PlayerID: "p1", Week: "2024-W10"}) {
		t.Errorf("key = %+v, want p1/2024-W10", ds.gotKey)
	}
}

// TestGetWeekPlanErrors verifies missing input and missing plans are tool errors.
func TestGetWeekPlanErrors(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, _ := h.getWeekPlan(context.Background(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("expected tool error without player")
	}
	res, _ = h.getWeekPlan(context.Background(), callRequest(map[string]any{"player": "p1"}))
	if !res.IsError {
		t.Error("expected tool error for a missing plan")
	}

	h = newHandlers(&fakeSource{err: errors.New("database down")})
	res, _ = h.getWeekPlan(context.Background(), callRequest(map[string]any{"player": "p1", "week": "2024-W10"}))
	if !res.IsError {
		t.Error("expected tool error when the source fails")
	}
}

// TestGetWeekLoad verifies the per-day summary of a plan.
func TestGetWeekLoad(t *testing.T) {
	res, err := newHandlers(&fakeSource{plan: testPlan()}).getWeekLoad(context.Background(), callRequest(map[string]any{"player": "p1", "week": "2024-W10"}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Summary plan.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if out.Summary.WeekLoad != 120 {
		t.Errorf("week load = %d, want 120", out.Summary.WeekLoad)
	}
	if len(out.Summary.Days) != 7 || out.Summary.Days[2].Day != plan.Monday || out.Summary.Days[2].Load != 120 {
		t.Errorf("days = %+v, want monday third with load 120", out.Summary.Days)
	}
}

// TestListWeekPlansSummaries verifies plans are listed in short form.
func TestListWeekPlansSummaries(t *testing.T) {
	res, err := newHandlers(&fakeSource{plan: testPlan()}).listWeekPlans(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	var out []planSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(out) != 1 || out[0].Blocks != 1 || out[0].TotalRPE != 120 {
		t.Errorf("summaries = %+v", out)
	}
}

// TestPreviewTemplateWeekNumber verifies week numbers start at 1 for callers.
func TestPreviewTemplateWeekNumber(t *testing.T) {
	ds := &fakeSource{}
	h := newHandlers(ds)
	res, err := h.previewTemplate(context.Background(), callRequest(map[string]any{"template": float64(0), "week": float64(2)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.gotWeek != 1 {
		t.Errorf("week index = %d, want 1", ds.gotWeek)
	}

	res, _ = h.previewTemplate(context.Background(), callRequest(map[string]any{"template": float64(0), "week": float64(0)}))
	if !res.IsError {
		t.Error("expected tool error for week 0")
	}
}

// TestGetPlayerLogEmpty verifies a missing log is returned as an empty log.
func TestGetPlayerLogEmpty(t *testing.T) {
	ds := &fakeSource{}
	res, err := newHandlers(ds).getPlayerLog(context.Background(), callRequest(map[string]any{"player": "p1", "block": "ukk", "level": "3"}))
	if err != nil {
		t.Fatal(err)
	}
	if ds.gotLog.String() != "p1_ukk_3" {
		t.Errorf("log key = %q, want p1_ukk_3", ds.gotLog.String())
	}
	var l plan.PlayerLog
	if err := json.Unmarshal([]byte(resultText(t, res)), &l); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if l.ID != "p1_ukk_3" || l.Entries == nil || len(l.Entries) != 0 {
		t.Errorf("log = %+v, want an empty log", l)
	}
}

// TestBlockCatalogResource verifies the catalog resource is JSON with the palette.
func TestBlockCatalogResource(t *testing.T) {
	var req mcp.ReadResourceRequest
	req.Params.URI = "blockplan://block_catalog"
	contents, err := newHandlers(&fakeSource{}).blockCatalog(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content = %T, want text", contents[0])
	}
	var listing catalog.Listing
	if err := json.Unmarshal([]byte(text.Text), &listing); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(listing.Palette) != len(listing.Blocks)+3 {
		t.Errorf("palette has %d entries, blocks %d", len(listing.Palette), len(listing.Blocks))
	}
}

// TestNewRegistersTools verifies the server builds with its tools and resources.
func TestNewRegistersTools(t *testing.T) {
	s := New(&fakeSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
}
