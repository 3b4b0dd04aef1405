package tools

import (
	"context"

	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type hotspotsArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
	Back       int    `json:"back,omitempty" jsonschema:"description=The number of days to look back for visits (1-30).,minimum=1,maximum=30,default=7"`
}

func (a *hotspotsArgs) SetDefaults() { a.Back = 7 }

type nearbyHotspotsArgs struct {
	Lat  float64 `json:"lat" jsonschema:"description=Latitude.,minimum=-90,maximum=90"`
	Lng  float64 `json:"lng" jsonschema:"description=Longitude.,minimum=-180,maximum=180"`
	Dist int     `json:"dist,omitempty" jsonschema:"description=The search radius in kilometers (0-50).,minimum=0,maximum=50,default=10"`
}

func (a *nearbyHotspotsArgs) SetDefaults() { a.Dist = 10 }

type hotspotInfoArgs struct {
	LocID string `json:"loc_id" jsonschema:"description=The location ID of the hotspot (e.g. 'L99381')."`
}

func registerHotspots(s *mcp.Server, d Deps) error {
	if err := mcp.AddTool(s, "get_ebird_hotspots",
		"Get birding hotspots for a specific region.",
		func(ctx context.Context, a hotspotsArgs) (any, error) {
			return d.EBird.Hotspots(ctx, a.RegionCode, a.Back)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_nearby_ebird_hotspots",
		"Get birding hotspots near a specific location.",
		func(ctx context.Context, a nearbyHotspotsArgs) (any, error) {
			return d.EBird.NearbyHotspots(ctx, a.Lat, a.Lng, a.Dist)
		}); err != nil {
		return err
	}

	return mcp.AddTool(s, "get_ebird_hotspot_info",
		"Get information about a specific hotspot.",
		func(ctx context.Context, a hotspotInfoArgs) (any, error) {
			return d.EBird.Hotspot(ctx, a.LocID)
		})
}
