// Package tools exposes the eBird API and the taxonomy cache as MCP tools.
package tools

import (
	"context"
	"time"

	"github.com/soyeahso/ebirdmcp/internal/ebird"
	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

// EBird is the upstream surface the tools forward to. *ebird.Client
// implements it.
type EBird interface {
	RecentObservations(ctx context.Context, regionCode string, back int, detail string) (ebird.Records, error)
	NotableObservations(ctx context.Context, regionCode, detail string) (ebird.Records, error)
	SpeciesObservations(ctx context.Context, speciesCode, regionCode string) (ebird.Records, error)
	NearbyObservations(ctx context.Context, lat, lng float64, dist, back int) (ebird.Records, error)
	NearbySpecies(ctx context.Context, speciesCode string, lat, lng float64, back int) (ebird.Records, error)
	NearestSpecies(ctx context.Context, speciesCode string, lat, lng float64) (ebird.Records, error)
	Hotspots(ctx context.Context, regionCode string, back int) (ebird.Records, error)
	NearbyHotspots(ctx context.Context, lat, lng float64, dist int) (ebird.Records, error)
	Hotspot(ctx context.Context, locID string) (ebird.Record, error)
	Visits(ctx context.Context, regionCode, date string) (ebird.Records, error)
	Checklist(ctx context.Context, subID string) (ebird.Record, error)
	Top100(ctx context.Context, regionCode, ymd string) (ebird.Records, error)
	Totals(ctx context.Context, regionCode string, day time.Time) (ebird.Record, error)
	Regions(ctx context.Context, regionType, parentRegionCode string) (ebird.Records, error)
	AdjacentRegions(ctx context.Context, regionCode string) (ebird.Records, error)
	Region(ctx context.Context, regionCode string) (ebird.Record, error)
	Taxonomy(ctx context.Context, locale string) (ebird.Records, error)
}

// Taxonomy answers species code / common name lookups. *taxonomy.Cache
// implements it.
type Taxonomy interface {
	CodeForName(ctx context.Context, name string) (string, bool, error)
	NameForCode(ctx context.Context, code string) (string, bool, error)
}

// Deps are the collaborators the tools forward to.
type Deps struct {
	EBird    EBird
	Taxonomy Taxonomy
	Now      func() time.Time // for get_ebird_totals; defaults to time.Now
}

// Register adds every eBird tool to s.
func Register(s *mcp.Server, d Deps) error {
	if d.Now == nil {
		d.Now = time.Now
	}
	for _, reg := range []func(*mcp.Server, Deps) error{
		registerObservations,
		registerHotspots,
		registerProducts,
		registerRegions,
		registerTaxonomy,
	} {
		if err := reg(s, d); err != nil {
			return err
		}
	}
	return nil
}
