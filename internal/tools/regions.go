package tools

import (
	"context"

	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type regionsArgs struct {
	RegionType       string `json:"region_type" jsonschema:"description=The type of region.,enum=country,enum=subnational1,enum=subnational2"`
	ParentRegionCode string `json:"parent_region_code" jsonschema:"description=The code for the parent region (e.g. 'world' or 'US' or 'US-NY')."`
}

type regionCodeArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
}

func registerRegions(s *mcp.Server, d Deps) error {
	if err := mcp.AddTool(s, "get_ebird_regions",
		"Get a list of sub-regions for a given parent region.",
		func(ctx context.Context, a regionsArgs) (any, error) {
			return d.EBird.Regions(ctx, a.RegionType, a.ParentRegionCode)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_adjacent_ebird_regions",
		"Get a list of regions adjacent to a given region.",
		func(ctx context.Context, a regionCodeArgs) (any, error) {
			return d.EBird.AdjacentRegions(ctx, a.RegionCode)
		}); err != nil {
		return err
	}

	return mcp.AddTool(s, "get_ebird_region_info",
		"Get information about a specific region.",
		func(ctx context.Context, a regionCodeArgs) (any, error) {
			return d.EBird.Region(ctx, a.RegionCode)
		})
}
