package ebird

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// RecentObservations returns recent observations in a region.
func (c *Client) RecentObservations(ctx context.Context, regionCode string, back int, detail string) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	if err := checkBack(back); err != nil {
		return nil, err
	}
	if err := checkDetail(detail); err != nil {
		return nil, err
	}
	q := url.Values{"back": {strconv.Itoa(back)}, "detail": {detail}}
	return c.records(ctx, "/data/obs/"+seg(regionCode)+"/recent", q)
}

// NotableObservations returns recent notable observations in a region.
func (c *Client) NotableObservations(ctx context.Context, regionCode, detail string) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	if err := checkDetail(detail); err != nil {
		return nil, err
	}
	q := url.Values{"detail": {detail}}
	return c.records(ctx, "/data/obs/"+seg(regionCode)+"/recent/notable", q)
}

// SpeciesObservations returns recent observations of one species in a region.
func (c *Client) SpeciesObservations(ctx context.Context, speciesCode, regionCode string) (Records, error) {
	if err := checkRequired("species_code", speciesCode); err != nil {
		return nil, err
	}
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	return c.records(ctx, "/data/obs/"+seg(regionCode)+"/recent/"+seg(speciesCode), nil)
}

// NearbyObservations returns recent observations within dist km of a point.
func (c *Client) NearbyObservations(ctx context.Context, lat, lng float64, dist, back int) (Records, error) {
	if err := checkCoords(lat, lng); err != nil {
		return nil, err
	}
	if err := checkDist(dist); err != nil {
		return nil, err
	}
	if err := checkBack(back); err != nil {
		return nil, err
	}
	la, ln := coordQuery(lat, lng)
	q := url.Values{"lat": {la}, "lng": {ln}, "dist": {strconv.Itoa(dist)}, "back": {strconv.Itoa(back)}}
	return c.records(ctx, "/data/obs/geo/recent", q)
}

// NearbySpecies returns recent sightings of a species near a point.
func (c *Client) NearbySpecies(ctx context.Context, speciesCode string, lat, lng float64, back int) (Records, error) {
	if err := checkRequired("species_code", speciesCode); err != nil {
		return nil, err
	}
	if err := checkCoords(lat, lng); err != nil {
		return nil, err
	}
	if err := checkBack(back); err != nil {
		return nil, err
	}
	la, ln := coordQuery(lat, lng)
	q := url.Values{"lat": {la}, "lng": {ln}, "back": {strconv.Itoa(back)}}
	return c.records(ctx, "/data/obs/geo/recent/"+seg(speciesCode), q)
}

// NearestSpecies returns the nearest locations where a species was seen.
func (c *Client) NearestSpecies(ctx context.Context, speciesCode string, lat, lng float64) (Records, error) {
	if err := checkRequired("species_code", speciesCode); err != nil {
		return nil, err
	}
	if err := checkCoords(lat, lng); err != nil {
		return nil, err
	}
	la, ln := coordQuery(lat, lng)
	q := url.Values{"lat": {la}, "lng": {ln}}
	return c.records(ctx, "/data/nearest/geo/recent/"+seg(speciesCode), q)
}

// Hotspots returns hotspots in a region visited within back days.
func (c *Client) Hotspots(ctx context.Context, regionCode string, back int) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	if err := checkBack(back); err != nil {
		return nil, err
	}
	q := url.Values{"back": {strconv.Itoa(back)}, "fmt": {"json"}}
	return c.records(ctx, "/ref/hotspot/"+seg(regionCode), q)
}

// NearbyHotspots returns hotspots within dist km of a point.
func (c *Client) NearbyHotspots(ctx context.Context, lat, lng float64, dist int) (Records, error) {
	if err := checkCoords(lat, lng); err != nil {
		return nil, err
	}
	if err := checkDist(dist); err != nil {
		return nil, err
	}
	la, ln := coordQuery(lat, lng)
	q := url.Values{"lat": {la}, "lng": {ln}, "dist": {strconv.Itoa(dist)}, "fmt": {"json"}}
	return c.records(ctx, "/ref/hotspot/geo", q)
}

// Hotspot returns details for a single hotspot.
func (c *Client) Hotspot(ctx context.Context, locID string) (Record, error) {
	if err := checkRequired("loc_id", locID); err != nil {
		return nil, err
	}
	return c.record(ctx, "/ref/hotspot/info/"+seg(locID), nil)
}

// Visits returns recent checklists submitted in a region. An empty date
// means the most recent visits; otherwise date is YYYY-MM-DD.
func (c *Client) Visits(ctx context.Context, regionCode, date string) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	path := "/product/lists/" + seg(regionCode)
	if date != "" {
		t, err := ParseDate("date", date)
		if err != nil {
			return nil, err
		}
		path += datePath(t)
	}
	return c.records(ctx, path, nil)
}

// Checklist returns a single submitted checklist.
func (c *Client) Checklist(ctx context.Context, subID string) (Record, error) {
	if err := checkRequired("sub_id", subID); err != nil {
		return nil, err
	}
	return c.record(ctx, "/product/checklist/view/"+seg(subID), nil)
}

// Top100 returns the top observers in a region on a given YYYY-MM-DD date.
func (c *Client) Top100(ctx context.Context, regionCode, ymd string) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	t, err := ParseDate("ymd", ymd)
	if err != nil {
		return nil, err
	}
	return c.records(ctx, "/product/top100/"+seg(regionCode)+datePath(t), nil)
}

// Totals returns the daily statistics for a region.
func (c *Client) Totals(ctx context.Context, regionCode string, day time.Time) (Record, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	return c.record(ctx, "/product/stats/"+seg(regionCode)+datePath(day), nil)
}

// Regions lists sub-regions of a given type under a parent region.
func (c *Client) Regions(ctx context.Context, regionType, parentRegionCode string) (Records, error) {
	if err := checkRegionType(regionType); err != nil {
		return nil, err
	}
	if err := checkRequired("parent_region_code", parentRegionCode); err != nil {
		return nil, err
	}
	return c.records(ctx, "/ref/region/list/"+seg(regionType)+"/"+seg(parentRegionCode), nil)
}

// AdjacentRegions lists regions bordering the given region.
func (c *Client) AdjacentRegions(ctx context.Context, regionCode string) (Records, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	return c.records(ctx, "/ref/adjacent/"+seg(regionCode), nil)
}

// Region returns information about a single region.
func (c *Client) Region(ctx context.Context, regionCode string) (Record, error) {
	if err := checkRequired("region_code", regionCode); err != nil {
		return nil, err
	}
	return c.record(ctx, "/ref/region/info/"+seg(regionCode), nil)
}

// Taxonomy returns the complete eBird taxonomy with common names in locale.
// An empty locale leaves the choice to eBird (English).
func (c *Client) Taxonomy(ctx context.Context, locale string) (Records, error) {
	q := url.Values{"fmt": {"json"}}
	if locale != "" {
		q.Set("locale", locale)
	}
	return c.records(ctx, "/ref/taxonomy/ebird", q)
}
