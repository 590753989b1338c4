package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
)

// HTTPClient implements DataSource by calling the blockplan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// get fetches path into v. A 404 reports found=false without error.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) (found bool, err error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return true, nil
}

func (c *HTTPClient) GetWeekPlan(ctx context.Context, key plan.Key) (*plan.WeekPlan, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var p plan.WeekPlan
	found, err := c.get(ctx, "/api/v1/week-plans/"+url.PathEscape(key.String()), nil, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListWeekPlans(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	params := url.Values{}
	if playerID != "" {
		params.Set("player", playerID)
	}
	var plans []plan.WeekPlan
	if _, err := c.get(ctx, "/api/v1/week-plans/", params, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) LatestWeekPlan(ctx context.Context, playerID string) (*plan.WeekPlan, error) {
	var p plan.WeekPlan
	found, err := c.get(ctx, "/api/v1/players/"+url.PathEscape(playerID)+"/latest-plan", nil, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetPlayerLog(ctx context.Context, key plan.LogKey) (*plan.PlayerLog, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var l plan.PlayerLog
	found, err := c.get(ctx, "/api/v1/player-logs/"+url.PathEscape(key.String()), nil, &l)
	if err != nil || !found {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context) ([]planner.TemplateInfo, error) {
	var templates []planner.TemplateInfo
	if _, err := c.get(ctx, "/api/v1/catalog/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *HTTPClient) PreviewTemplate(ctx context.Context, idx, week int) (*planner.TemplatePreview, error) {
	path := "/api/v1/catalog/templates/" + strconv.Itoa(idx) + "/weeks/" + strconv.Itoa(week)
	var preview planner.TemplatePreview
	found, err := c.get(ctx, path, nil, &preview)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: index %d", catalog.ErrTemplateNotFound, idx)
	}
	return &preview, nil
}

func (c *HTTPClient) BlockCatalog(ctx context.Context) (*catalog.Listing, error) {
	var listing catalog.Listing
	if _, err := c.get(ctx, "/api/v1/catalog/blocks", nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}
