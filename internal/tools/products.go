package tools

import (
	"context"

	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type visitsArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
	Date       string `json:"date,omitempty" jsonschema:"description=The date of the visits (YYYY-MM-DD). Omit for the most recent visits.,pattern=^\\d{4}-\\d{2}-\\d{2}$"`
}

type checklistArgs struct {
	SubID string `json:"sub_id" jsonschema:"description=The submission ID of the checklist (e.g. 'S144646447')."`
}

type top100Args struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
	YMD        string `json:"ymd" jsonschema:"description=The date in 'YYYY-MM-DD' format.,pattern=^\\d{4}-\\d{2}-\\d{2}$"`
}

type totalsArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
}

func registerProducts(s *mcp.Server, d Deps) error {
	if err := mcp.AddTool(s, "get_ebird_visits",
		"Get a list of visits (checklists) for a given region.",
		func(ctx context.Context, a visitsArgs) (any, error) {
			return d.EBird.Visits(ctx, a.RegionCode, a.Date)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_ebird_checklist",
		"Get the details of a specific checklist.",
		func(ctx context.Context, a checklistArgs) (any, error) {
			return d.EBird.Checklist(ctx, a.SubID)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_ebird_top_100",
		"Get the top 100 observers for a region on a specific date.",
		func(ctx context.Context, a top100Args) (any, error) {
			return d.EBird.Top100(ctx, a.RegionCode, a.YMD)
		}); err != nil {
		return err
	}

	return mcp.AddTool(s, "get_ebird_totals",
		"Get today's totals (checklists, contributors, species) for a region.",
		func(ctx context.Context, a totalsArgs) (any, error) {
			return d.EBird.Totals(ctx, a.RegionCode, d.Now())
		})
}
