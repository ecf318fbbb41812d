package resolve

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Patterns for the coordinate-bearing Google Maps URL shapes. The @ form
// optionally carries a trailing zoom ("...,15z") which is ignored.
var (
	atCoordsRe   = regexp.MustCompile(`@(-?\d{1,3}(?:\.\d+)?),(-?\d{1,3}(?:\.\d+)?)(?:,\d+(?:\.\d+)?z)?`)
	coordPairRe  = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)
	placePathRe  = regexp.MustCompile(`/place/[^/@]+@(-?\d{1,3}(?:\.\d+)?),(-?\d{1,3}(?:\.\d+)?)`)
	coordParams  = []string{"q", "ll", "center"}
)

// ExtractFromMapURL parses a Google-Maps-style link and classifies it.
// It returns either direct coordinates or a geocode-required result with
// the identifiers needed to finish resolution. A false second return means
// the link is absent or matches no known shape; callers treat that as
// "try the next strategy", never as an error.
//
// Shapes are tried in priority order, first match wins:
//
//	place_id=...        -> geocode by place identifier
//	@lat,lng[,zoom]     -> direct
//	?q=lat,lng          -> direct
//	?ll=lat,lng         -> direct
//	center=lat,lng      -> direct
//	cid=...             -> geocode by caller-supplied name
//	query=...           -> geocode by free text
//	/place/name@lat,lng -> direct
//
// A matched pair with lat or lng outside valid ranges is discarded, never
// clamped; the remaining shapes are still tried.
func ExtractFromMapURL(raw string) (types.ExtractionResult, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.ExtractionResult{}, false
	}

	params := queryParams(raw)

	if id := firstParam(params, "place_id", "query_place_id"); id != "" {
		return types.ExtractionResult{PlaceID: id}, true
	}

	if c, ok := parsePair(atCoordsRe.FindStringSubmatch(raw)); ok {
		return types.ExtractionResult{Coord: &c}, true
	}

	for _, key := range coordParams {
		if c, ok := parsePair(coordPairRe.FindStringSubmatch(params.Get(key))); ok {
			return types.ExtractionResult{Coord: &c}, true
		}
	}

	if cid := params.Get("cid"); cid != "" {
		return types.ExtractionResult{CID: cid}, true
	}

	if q := params.Get("query"); q != "" {
		return types.ExtractionResult{Query: q}, true
	}

	if c, ok := parsePair(placePathRe.FindStringSubmatch(raw)); ok {
		return types.ExtractionResult{Coord: &c}, true
	}

	return types.ExtractionResult{}, false
}

// queryParams pulls the decoded query parameters out of a link, tolerating
// links that do not parse as URLs at all.
func queryParams(raw string) url.Values {
	u, err := url.Parse(raw)
	if err != nil {
		return url.Values{}
	}
	params, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return url.Values{}
	}
	return params
}

func firstParam(params url.Values, keys ...string) string {
	for _, k := range keys {
		if v := params.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// parsePair converts a regex submatch (full match, lat, lng, ...) into a
// validated coordinate. Out-of-range values are rejected outright.
func parsePair(m []string) (types.Coordinate, bool) {
	if len(m) < 3 {
		return types.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return types.Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return types.Coordinate{}, false
	}
	c := types.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return types.Coordinate{}, false
	}
	return c, true
}
