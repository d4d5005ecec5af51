package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/core/algo"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// jsonResult renders a payload as the text of a tool result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// applyTopN overrides the configured cut-offs when the argument is set.
func applyTopN(cfg *contract.Config, request mcp.CallToolRequest) error {
	raw := request.GetString("top_n", "")
	if raw == "" {
		return nil
	}
	topN, err := contract.ParseTopN(raw)
	if err != nil {
		return err
	}
	cfg.TopN = topN
	return nil
}

// parseCounts converts a JSON object into an activity count map.
func parseCounts(raw any) (map[string]int, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("counts must be an object of participant to count")
	}
	counts := make(map[string]int, len(obj))
	for name, v := range obj {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("count of %q is not a number", name)
		}
		if f < 0 || f != math.Trunc(f) {
			return nil, fmt.Errorf("count of %q must be a non-negative integer", name)
		}
		counts[name] = int(f)
	}
	return counts, nil
}

func (h *toolHandler) handleComputeConcentration(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := parseCounts(request.GetArguments()["counts"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid counts: %v", err)), nil
	}
	cfg := h.baseCfg.Clone()
	if err := applyTopN(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid top_n: %v", err)), nil
	}
	if len(cfg.TopN) == 0 {
		cfg.TopN = schema.DefaultTopN
	}

	result := algo.Compute(counts, cfg.TopN)
	env := schema.NewEnvelope("compute_concentration", "", []string{"request"}, time.Now(), result)
	return jsonResult(env)
}

func (h *toolHandler) handleGetConcentration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if raw := request.GetString("activities", ""); raw != "" {
		var activities []schema.Activity
		for _, part := range strings.Split(raw, ",") {
			a := schema.Activity(strings.ToLower(strings.TrimSpace(part)))
			if _, ok := schema.ValidActivities[a]; !ok {
				return mcp.NewToolResultError(fmt.Sprintf("invalid activity %q", part)), nil
			}
			activities = append(activities, a)
		}
		cfg.Activities = activities
	}
	if err := applyTopN(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid top_n: %v", err)), nil
	}

	report, info, err := core.GetConcentrationResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("concentration analysis failed: %v", err)), nil
	}
	return jsonResult(info.Envelope(core.AnalysisConcentration, report, ""))
}

func (h *toolHandler) handleGetNetworkMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	relation := schema.Relation(strings.ToLower(request.GetString("relation", "")))
	if _, ok := schema.ValidRelations[relation]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid relation %q", relation)), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Relations = []schema.Relation{relation}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	results, info, err := core.GetNetworkResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("network analysis failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no %s network was built", relation)), nil
	}
	result := results[0]
	return jsonResult(info.Envelope(core.AnalysisNetwork+"_"+string(relation), result, result.Error))
}

func (h *toolHandler) handleGetYearlyTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activity := schema.Activity(strings.ToLower(request.GetString("activity", "")))
	if _, ok := schema.ValidActivities[activity]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid activity %q", activity)), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Activities = []schema.Activity{activity}

	result, info, err := core.GetTimeseriesResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeseries analysis failed: %v", err)), nil
	}
	var stepErr string
	if len(result.Trends) > 0 {
		stepErr = result.Trends[0].Error
	}
	return jsonResult(info.Envelope(core.AnalysisTimeseries, result, stepErr))
}
