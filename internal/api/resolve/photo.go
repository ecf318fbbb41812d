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
)

const (
	defaultPlacesEndpoint    = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	defaultPlacePhotoBase    = "https://maps.googleapis.com/maps/api/place/photo"
	defaultStaticMapEndpoint = "https://maps.googleapis.com/maps/api/staticmap"
	photoCacheTTL            = time.Hour
	photoMaxWidth            = 800
)

// PhotoService finds a visual for an itinerary card: a place photo when the
// Places API knows the spot, otherwise a static map centered on whatever
// coordinates the link or geocoder can produce. Every failure path returns
// ("", false); cards fall back to placeholder imagery.
type PhotoService struct {
	logger   *slog.Logger
	session  *SessionCell
	resolver Resolver

	placesEndpoint    string
	photoBase         string
	staticMapEndpoint string
	photos            *cache.Cache
}

func NewPhotoService(session *SessionCell, resolver Resolver, logger *slog.Logger) *PhotoService {
	return &PhotoService{
		logger:            logger,
		session:           session,
		resolver:          resolver,
		placesEndpoint:    defaultPlacesEndpoint,
		photoBase:         defaultPlacePhotoBase,
		staticMapEndpoint: defaultStaticMapEndpoint,
		photos:            cache.New(photoCacheTTL, 2*photoCacheTTL),
	}
}

// WithEndpoints overrides the provider endpoints. Test hook.
func (s *PhotoService) WithEndpoints(places, photoBase, staticMap string) *PhotoService {
	s.placesEndpoint = places
	s.photoBase = photoBase
	s.staticMapEndpoint = staticMap
	return s
}

// PlacePhotoURL returns a displayable image URL for a place, trying a
// Places photo first and a static map second.
func (s *PhotoService) PlacePhotoURL(ctx context.Context, mapURL, name string) (string, bool) {
	cacheKey := normalizeName(name) + "|" + mapURL
	if hit, found := s.photos.Get(cacheKey); found {
		u := hit.(string)
		return u, u != ""
	}

	if u, ok := s.placePhoto(ctx, name); ok {
		s.photos.Set(cacheKey, u, cache.DefaultExpiration)
		return u, true
	}

	if u, ok := s.staticMap(ctx, mapURL, name); ok {
		s.photos.Set(cacheKey, u, cache.DefaultExpiration)
		return u, true
	}

	s.photos.Set(cacheKey, "", cache.DefaultExpiration)
	return "", false
}

// placesResponse pins the Places Text Search payload shape at the boundary.
type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

func (s *PhotoService) placePhoto(ctx context.Context, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	session, err := s.session.Get(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "maps session unavailable, photo lookup skipped", slog.Any("error", err))
		return "", false
	}

	params := url.Values{"query": {name}, "key": {session.APIKey}}
	reqCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.placesEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", false
	}
	resp, err := session.Client.Do(req)
	if err != nil {
		s.logger.DebugContext(ctx, "places request failed", slog.Any("error", err))
		return "", false
	}
	defer resp.Body.Close()

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false
	}
	if payload.Status != "OK" || len(payload.Results) == 0 || len(payload.Results[0].Photos) == 0 {
		return "", false
	}

	ref := payload.Results[0].Photos[0].PhotoReference
	photo := url.Values{
		"photo_reference": {ref},
		"maxwidth":        {fmt.Sprintf("%d", photoMaxWidth)},
		"key":             {session.APIKey},
	}
	return s.photoBase + "?" + photo.Encode(), true
}

func (s *PhotoService) staticMap(ctx context.Context, mapURL, name string) (string, bool) {
	res, extracted := ExtractFromMapURL(mapURL)
	if !extracted && name == "" {
		return "", false
	}
	coord, ok := s.resolver.Resolve(ctx, res, name)
	if !ok {
		return "", false
	}

	session, err := s.session.Get(ctx)
	if err != nil {
		return "", false
	}
	params := url.Values{
		"center": {fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude)},
		"zoom":   {"15"},
		"size":   {"800x400"},
		"key":    {session.APIKey},
	}
	return s.staticMapEndpoint + "?" + params.Encode(), true
}
