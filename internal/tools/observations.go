package tools

import (
	"context"

	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type regionObsArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
	Back       int    `json:"back,omitempty" jsonschema:"description=The number of days to look back for observations (1-30).,minimum=1,maximum=30,default=7"`
	Detail     string `json:"detail,omitempty" jsonschema:"description=The level of detail for the observations.,enum=full,enum=simple,default=full"`
}

func (a *regionObsArgs) SetDefaults() { a.Back, a.Detail = 7, "full" }

type notableArgs struct {
	RegionCode string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
	Detail     string `json:"detail,omitempty" jsonschema:"description=The level of detail for the observations.,enum=full,enum=simple,default=full"`
}

func (a *notableArgs) SetDefaults() { a.Detail = "full" }

type speciesObsArgs struct {
	SpeciesCode string `json:"species_code" jsonschema:"description=The species code (e.g. 'horlar')."`
	RegionCode  string `json:"region_code" jsonschema:"description=The code for the region (e.g. 'US-NY')."`
}

type nearbyObsArgs struct {
	Lat  float64 `json:"lat" jsonschema:"description=Latitude.,minimum=-90,maximum=90"`
	Lng  float64 `json:"lng" jsonschema:"description=Longitude.,minimum=-180,maximum=180"`
	Dist int     `json:"dist,omitempty" jsonschema:"description=The search radius in kilometers (0-50).,minimum=0,maximum=50,default=10"`
	Back int     `json:"back,omitempty" jsonschema:"description=The number of days to look back for observations (1-30).,minimum=1,maximum=30,default=7"`
}

func (a *nearbyObsArgs) SetDefaults() { a.Dist, a.Back = 10, 7 }

type nearestSpeciesArgs struct {
	SpeciesCode string  `json:"species_code" jsonschema:"description=The species code (e.g. 'tenwar')."`
	Lat         float64 `json:"lat" jsonschema:"description=Latitude.,minimum=-90,maximum=90"`
	Lng         float64 `json:"lng" jsonschema:"description=Longitude.,minimum=-180,maximum=180"`
}

type nearbySpeciesArgs struct {
	SpeciesCode string  `json:"species_code" jsonschema:"description=The species code (e.g. 'barswa')."`
	Lat         float64 `json:"lat" jsonschema:"description=Latitude.,minimum=-90,maximum=90"`
	Lng         float64 `json:"lng" jsonschema:"description=Longitude.,minimum=-180,maximum=180"`
	Back        int     `json:"back,omitempty" jsonschema:"description=The number of days to look back for observations (1-30).,minimum=1,maximum=30,default=10"`
}

func (a *nearbySpeciesArgs) SetDefaults() { a.Back = 10 }

func registerObservations(s *mcp.Server, d Deps) error {
	if err := mcp.AddTool(s, "get_ebird_observations",
		"Get bird observations for a specific region.",
		func(ctx context.Context, a regionObsArgs) (any, error) {
			return d.EBird.RecentObservations(ctx, a.RegionCode, a.Back, a.Detail)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_ebird_species_observations",
		"Get observations of a specific species in a region.",
		func(ctx context.Context, a speciesObsArgs) (any, error) {
			return d.EBird.SpeciesObservations(ctx, a.SpeciesCode, a.RegionCode)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_nearby_ebird_observations",
		"Get bird observations near a specific location.",
		func(ctx context.Context, a nearbyObsArgs) (any, error) {
			return d.EBird.NearbyObservations(ctx, a.Lat, a.Lng, a.Dist, a.Back)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_notable_ebird_observations",
		"Get notable bird observations for a specific region.",
		func(ctx context.Context, a notableArgs) (any, error) {
			return d.EBird.NotableObservations(ctx, a.RegionCode, a.Detail)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_nearest_ebird_species",
		"Find the nearest location where a species has been observed.",
		func(ctx context.Context, a nearestSpeciesArgs) (any, error) {
			return d.EBird.NearestSpecies(ctx, a.SpeciesCode, a.Lat, a.Lng)
		}); err != nil {
		return err
	}

	return mcp.AddTool(s, "get_nearby_ebird_species",
		"Get recent sightings of a species near a location.",
		func(ctx context.Context, a nearbySpeciesArgs) (any, error) {
			return d.EBird.NearbySpecies(ctx, a.SpeciesCode, a.Lat, a.Lng, a.Back)
		})
}
