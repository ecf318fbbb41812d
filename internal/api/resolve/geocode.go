package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	defaultGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	geocodeTimeout         = 10 * time.Second
	geocodeCacheTTL        = 30 * time.Minute
)

// Resolver turns a geocode-required extraction result into coordinates.
// A false return is the only failure mode: missing key, transport errors,
// zero results and ambiguous statuses all collapse into "no result".
type Resolver interface {
	Resolve(ctx context.Context, res types.ExtractionResult, placeName string) (types.Coordinate, bool)
	ResolveWithContext(ctx context.Context, res types.ExtractionResult, placeName, regionHint string) (types.Coordinate, bool)
}

var _ Resolver = (*GoogleResolver)(nil)

// GoogleResolver resolves against the Google Geocoding API. The endpoint
// is configurable so tests can point it at a local server.
type GoogleResolver struct {
	logger   *slog.Logger
	session  *SessionCell
	endpoint string
	results  *cache.Cache
}

func NewGoogleResolver(session *SessionCell, logger *slog.Logger) *GoogleResolver {
	return &GoogleResolver{
		logger:   logger,
		session:  session,
		endpoint: defaultGeocodeEndpoint,
		results:  cache.New(geocodeCacheTTL, 2*geocodeCacheTTL),
	}
}

// WithEndpoint overrides the geocoding endpoint. Test hook.
func (r *GoogleResolver) WithEndpoint(endpoint string) *GoogleResolver {
	r.endpoint = endpoint
	return r
}

// Resolve dispatches on the extraction result's kind. A caller-supplied
// place name takes priority over any text embedded in the link; a CID can
// only be resolved through the name, since the identifier itself is opaque
// to the geocoder.
func (r *GoogleResolver) Resolve(ctx context.Context, res types.ExtractionResult, placeName string) (types.Coordinate, bool) {
	c, ok := r.resolve(ctx, res, placeName, "")
	recordLookup(ctx, ok)
	return c, ok
}

// ResolveWithContext behaves like Resolve but retries a failed text lookup
// once with a region hint appended, e.g. a known city. Best effort only.
func (r *GoogleResolver) ResolveWithContext(ctx context.Context, res types.ExtractionResult, placeName, regionHint string) (types.Coordinate, bool) {
	if c, ok := r.resolve(ctx, res, placeName, ""); ok {
		recordLookup(ctx, true)
		return c, true
	}
	if regionHint == "" {
		recordLookup(ctx, false)
		return types.Coordinate{}, false
	}
	c, ok := r.resolve(ctx, res, placeName, regionHint)
	recordLookup(ctx, ok)
	return c, ok
}

func recordLookup(ctx context.Context, hit bool) {
	m := metrics.Get()
	m.ResolutionLookupsTotal.Add(ctx, 1)
	if !hit {
		m.ResolutionMissesTotal.Add(ctx, 1)
	}
}

func (r *GoogleResolver) resolve(ctx context.Context, res types.ExtractionResult, placeName, regionHint string) (types.Coordinate, bool) {
	if res.Coord != nil {
		return *res.Coord, true
	}

	switch {
	case res.PlaceID != "":
		return r.geocode(ctx, url.Values{"place_id": {res.PlaceID}}, "place_id:"+res.PlaceID)
	case res.CID != "":
		if placeName == "" {
			r.logger.DebugContext(ctx, "cid link without a place name, cannot geocode", slog.String("cid", res.CID))
			return types.Coordinate{}, false
		}
		return r.geocodeByText(ctx, placeName, regionHint)
	default:
		query := placeName
		if query == "" {
			query = res.Query
		}
		if query == "" {
			return types.Coordinate{}, false
		}
		return r.geocodeByText(ctx, query, regionHint)
	}
}

func (r *GoogleResolver) geocodeByText(ctx context.Context, query, regionHint string) (types.Coordinate, bool) {
	if regionHint != "" {
		query = query + ", " + regionHint
	}
	return r.geocode(ctx, url.Values{"address": {query}}, "address:"+normalizeName(query))
}

// geocodeResponse is the subset of the Geocoding API payload we read.
// Shapes are pinned down at the boundary so the rest of the pipeline works
// on closed types.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (r *GoogleResolver) geocode(ctx context.Context, params url.Values, cacheKey string) (types.Coordinate, bool) {
	if hit, found := r.results.Get(cacheKey); found {
		c := hit.(types.Coordinate)
		return c, c.Valid()
	}

	session, err := r.session.Get(ctx)
	if err != nil {
		r.logger.DebugContext(ctx, "maps session unavailable, geocoding skipped", slog.Any("error", err))
		return types.Coordinate{}, false
	}

	params.Set("key", session.APIKey)
	reqURL := fmt.Sprintf("%s?%s", r.endpoint, params.Encode())

	reqCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Coordinate{}, false
	}

	resp, err := session.Client.Do(req)
	if err != nil {
		r.logger.DebugContext(ctx, "geocoding request failed", slog.Any("error", err))
		return types.Coordinate{}, false
	}
	defer resp.Body.Close()

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.logger.DebugContext(ctx, "geocoding response decode failed", slog.Any("error", err))
		return types.Coordinate{}, false
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		r.logger.DebugContext(ctx, "geocoding returned no usable result", slog.String("status", payload.Status))
		return types.Coordinate{}, false
	}

	loc := payload.Results[0].Geometry.Location
	c := types.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}
	if !c.Valid() {
		return types.Coordinate{}, false
	}
	r.results.Set(cacheKey, c, cache.DefaultExpiration)
	return c, true
}
