package resolve

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Handler exposes the resolution endpoints the UI calls: geocoding a
// single map link, geocoding a whole map view in one request, and fetching
// a place visual. Whole-itinerary annotation happens inside the itinerary
// generation flow.
type Handler struct {
	annotator *Annotator
	resolver  Resolver
	photos    *PhotoService
	queue     *Queue
	logger    *slog.Logger
}

func NewHandler(annotator *Annotator, resolver Resolver, photos *PhotoService, queue *Queue, logger *slog.Logger) *Handler {
	return &Handler{
		annotator: annotator,
		resolver:  resolver,
		photos:    photos,
		queue:     queue,
		logger:    logger,
	}
}

type geocodeRequest struct {
	MapURL     string `json:"map_url"`
	PlaceName  string `json:"place_name,omitempty"`
	RegionHint string `json:"region_hint,omitempty"`
}

type geocodeResponseBody struct {
	Resolved   bool              `json:"resolved"`
	Coordinate *types.Coordinate `json:"coordinate,omitempty"`
}

// Geocode resolves one map link (plus optional place name) to coordinates.
// An unresolvable place is a 200 with resolved=false, not an error.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Geocode").Start(r.Context(), "Geocode", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/geocode"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Geocode"))

	var req geocodeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.MapURL == "" && req.PlaceName == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "map_url or place_name required")
		return
	}

	res, _ := ExtractFromMapURL(req.MapURL)
	coord, ok := h.resolver.ResolveWithContext(ctx, res, req.PlaceName, req.RegionHint)
	if !ok {
		l.DebugContext(ctx, "geocode yielded no result", slog.String("map_url", req.MapURL))
		api.WriteJSONResponse(w, r, http.StatusOK, geocodeResponseBody{Resolved: false})
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, geocodeResponseBody{Resolved: true, Coordinate: &coord})
}

type geocodeBatchRequest struct {
	Places []geocodeRequest `json:"places"`
}

type geocodeBatchResponseBody struct {
	Results []geocodeResponseBody `json:"results"`
}

const geocodeBatchMax = 50

// GeocodeBatch resolves the places of one map view in a single request.
// Entries go through the rate-limited queue sequentially; results come back
// index-aligned with the input, unresolvable entries as resolved=false.
func (h *Handler) GeocodeBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GeocodeBatch").Start(r.Context(), "GeocodeBatch", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/geocode/batch"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GeocodeBatch"))

	var req geocodeBatchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Places) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "places must not be empty")
		return
	}
	if len(req.Places) > geocodeBatchMax {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d places per batch", geocodeBatchMax))
		return
	}

	entries := make([]BatchEntry, len(req.Places))
	for i, p := range req.Places {
		entries[i] = BatchEntry{MapURL: p.MapURL, PlaceName: p.PlaceName, RegionHint: p.RegionHint}
	}

	coords, err := ResolveBatch(ctx, h.queue, h.resolver, entries)
	if err != nil {
		// Client went away mid-batch; nothing left to answer.
		l.DebugContext(ctx, "batch geocode abandoned", slog.Any("error", err), slog.Int("resolved", len(coords)))
		return
	}

	results := make([]geocodeResponseBody, len(entries))
	for i := range entries {
		if c, ok := coords[i]; ok {
			coord := c
			results[i] = geocodeResponseBody{Resolved: true, Coordinate: &coord}
		}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, geocodeBatchResponseBody{Results: results})
}

type photoResponseBody struct {
	Found    bool   `json:"found"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// PlacePhoto returns an image URL for a place card, or found=false when
// the provider has nothing; the UI renders placeholder imagery then.
func (h *Handler) PlacePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacePhoto").Start(r.Context(), "PlacePhoto", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/photo"),
	))
	defer span.End()

	mapURL := r.URL.Query().Get("map_url")
	name := r.URL.Query().Get("name")
	if mapURL == "" && name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "map_url or name required")
		return
	}

	photoURL, ok := h.photos.PlacePhotoURL(ctx, mapURL, name)
	api.WriteJSONResponse(w, r, http.StatusOK, photoResponseBody{Found: ok, PhotoURL: photoURL})
}
