package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/blockplan/internal/plan"
)

// resolveWeek returns the week key from an explicit week, else from a date
// inside that week. Both empty yields "" (latest plan).
func resolveWeek(week, date string) (string, error) {
	if week != "" {
		return week, nil
	}
	if date == "" {
		return "", nil
	}
	t, err := parseFlexTime(date)
	if err != nil {
		return "", err
	}
	return plan.WeekKey(t), nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// planSummary is the short form of a plan used in listings.
type planSummary struct {
	ID       string `json:"id"`
	PlayerID string `json:"playerId"`
	Week     string `json:"week"`
	TotalRPE int    `json:"totalRPE"`
	Blocks   int    `json:"blocks"`
}

// --- Tool definitions ---

var toolGetWeekPlan = mcp.NewTool("get_week_plan",
	mcp.WithDescription("Retrieve one player's week plan: seven days (Saturday to Friday) with their blocks (code, RPE, duration in minutes), intensity notes and day type. Without week or date the player's latest plan is returned."),
	mcp.WithString("player", mcp.Required(), mcp.Description("Player id")),
	mcp.WithString("week", mcp.Description("ISO week key, e.g. 2024-W10")),
	mcp.WithString("date", mcp.Description("Any date inside the week (ISO 8601 or YYYY-MM-DD). Ignored when week is set.")),
)

var toolListWeekPlans = mcp.NewTool("list_week_plans",
	mcp.WithDescription("List stored week plans with their total load. Optionally filtered to one player."),
	mcp.WithString("player", mcp.Description("Player id. Defaults to all players.")),
)

var toolGetWeekLoad = mcp.NewTool("get_week_load",
	mcp.WithDescription("Training load of a week plan: per day the summed duration and load (RPE x minutes), plus the week total. Special days (match, play, free) count zero."),
	mcp.WithString("player", mcp.Required(), mcp.Description("Player id")),
	mcp.WithString("week", mcp.Description("ISO week key. Defaults to the latest plan.")),
	mcp.WithString("date", mcp.Description("Any date inside the week. Ignored when week is set.")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List the week templates of the catalog with their index, level range and selectable weeks."),
)

var toolPreviewTemplate = mcp.NewTool("preview_template",
	mcp.WithDescription("Instantiate one week of a template without saving it. Returns the seven days and the load summary."),
	mcp.WithNumber("template", mcp.Required(), mcp.Description("Template index from list_templates")),
	mcp.WithNumber("week", mcp.Description("Week number, starting at 1. Defaults to 1.")),
)

var toolGetPlayerLog = mcp.NewTool("get_player_log",
	mcp.WithDescription("A player's recorded weights and notes for one block at one level, keyed by exercise id."),
	mcp.WithString("player", mcp.Required(), mcp.Description("Player id")),
	mcp.WithString("block", mcp.Required(), mcp.Description("Block id, e.g. ukk")),
	mcp.WithString("level", mcp.Required(), mcp.Description("Level, e.g. 3")),
)

// --- Tool handlers ---

// findPlan loads the plan for player and week, or the latest plan when week is empty.
func (h *handlers) findPlan(ctx context.Context, req mcp.CallToolRequest) (*plan.WeekPlan, *mcp.CallToolResult) {
	player, err := req.RequireString("player")
	if err != nil {
		return nil, mcp.NewToolResultError("player parameter is required")
	}
	week, err := resolveWeek(req.GetString("week", ""), req.GetString("date", ""))
	if err != nil {
		return nil, mcp.NewToolResultError("invalid date format: " + err.Error())
	}

	var p *plan.WeekPlan
	if week == "" {
		p, err = h.ds.LatestWeekPlan(ctx, player)
	} else {
		p, err = h.ds.GetWeekPlan(ctx, plan.Key{PlayerID: player, Week: week})
	}
	if err != nil {
		h.log.Error("mcp find plan", "player", player, "week", week, "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	if p == nil {
		return nil, mcp.NewToolResultError("no week plan found for player " + player)
	}
	return p, nil
}

func (h *handlers) getWeekPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := h.findPlan(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWeekPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListWeekPlans(ctx, req.GetString("player", ""))
	if err != nil {
		h.log.Error("mcp list_week_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, planSummary{ID: p.ID, PlayerID: p.PlayerID, Week: p.Week, TotalRPE: p.TotalRPE, Blocks: p.Days.BlockCount()})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeekLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := h.findPlan(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"id":      p.ID,
		"week":    p.Week,
		"summary": plan.Summarize(p.Days),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("template")
	if err != nil {
		return mcp.NewToolResultError("template parameter is required"), nil
	}
	week := req.GetInt("week", 1)
	if week < 1 {
		return mcp.NewToolResultError("week starts at 1"), nil
	}

	preview, err := h.ds.PreviewTemplate(ctx, idx, week-1)
	if err != nil {
		return mcp.NewToolResultError("preview failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(preview)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlayerLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := req.RequireString("player")
	if err != nil {
		return mcp.NewToolResultError("player parameter is required"), nil
	}
	block, err := req.RequireString("block")
	if err != nil {
		return mcp.NewToolResultError("block parameter is required"), nil
	}
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError("level parameter is required"), nil
	}

	key := plan.LogKey{PlayerID: player, BlockID: block, Level: level}
	l, err := h.ds.GetPlayerLog(ctx, key)
	if err != nil {
		h.log.Error("mcp get_player_log", "id", key.String(), "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if l == nil {
		l = &plan.PlayerLog{ID: key.String(), Entries: plan.Entries{}}
	}

	result, err := mcp.NewToolResultJSON(l)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
