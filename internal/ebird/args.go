package ebird

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ArgumentError reports an argument rejected before any request is made.
type ArgumentError struct {
	Arg     string
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("ebird: invalid %s: %s", e.Arg, e.Message)
}

// Limits enforced by the upstream API.
const (
	MinBack = 1
	MaxBack = 30
	MinDist = 0
	MaxDist = 50
)

// Detail levels for observation listings.
const (
	DetailSimple = "simple"
	DetailFull   = "full"
)

// RegionTypes accepted by Regions.
var RegionTypes = []string{"country", "subnational1", "subnational2"}

const dateLayout = "2006-01-02"

func checkRequired(arg, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ArgumentError{Arg: arg, Message: "must not be empty"}
	}
	return nil
}

func checkBack(back int) error {
	if back < MinBack || back > MaxBack {
		return &ArgumentError{Arg: "back", Message: fmt.Sprintf("must be %d-%d days, got %d", MinBack, MaxBack, back)}
	}
	return nil
}

func checkDist(dist int) error {
	if dist < MinDist || dist > MaxDist {
		return &ArgumentError{Arg: "dist", Message: fmt.Sprintf("must be %d-%d km, got %d", MinDist, MaxDist, dist)}
	}
	return nil
}

func checkDetail(detail string) error {
	if detail != DetailSimple && detail != DetailFull {
		return &ArgumentError{Arg: "detail", Message: fmt.Sprintf("must be %q or %q, got %q", DetailSimple, DetailFull, detail)}
	}
	return nil
}

func checkCoords(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return &ArgumentError{Arg: "lat", Message: fmt.Sprintf("must be -90 to 90, got %g", lat)}
	}
	if lng < -180 || lng > 180 {
		return &ArgumentError{Arg: "lng", Message: fmt.Sprintf("must be -180 to 180, got %g", lng)}
	}
	return nil
}

func checkRegionType(rt string) error {
	if !slices.Contains(RegionTypes, rt) {
		return &ArgumentError{Arg: "region_type", Message: fmt.Sprintf("must be one of %v, got %q", RegionTypes, rt)}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date argument.
func ParseDate(arg, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &ArgumentError{Arg: arg, Message: fmt.Sprintf("must be YYYY-MM-DD, got %q", s)}
	}
	return t, nil
}

// datePath renders a date as the /{y}/{m}/{d} suffix eBird expects.
func datePath(t time.Time) string {
	return fmt.Sprintf("/%d/%d/%d", t.Year(), int(t.Month()), t.Day())
}

func coordQuery(lat, lng float64) (string, string) {
	return strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lng, 'f', -1, 64)
}
