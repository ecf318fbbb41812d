package resolve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Annotator fills the missing map and neighborhood links on a generated
// itinerary from its grounding citations. It is pure: the input is never
// mutated, output structure and ordering are identical to the input, and
// the same inputs with the same citation order produce the same output.
type Annotator struct {
	logger *slog.Logger
}

func NewAnnotator(logger *slog.Logger) *Annotator {
	return &Annotator{logger: logger}
}

// Annotate returns a deep copy of the itinerary where every hotel,
// activity and hidden gem that lacked a map link has one matched from the
// citations, and every located activity carries a neighborhood link
// (fabricated as a maps search when no citation qualifies). Links already
// present are never overwritten; unmatched names stay nil rather than
// failing the rest of the document.
func (a *Annotator) Annotate(ctx context.Context, it types.Itinerary, chunks []types.GroundingChunk) types.Itinerary {
	_, span := otel.Tracer("resolve").Start(ctx, "Annotate")
	defer span.End()

	filled := 0
	out := it
	out.PackingList = append([]string(nil), it.PackingList...)

	out.Hotels = make([]types.Hotel, len(it.Hotels))
	for i, h := range it.Hotels {
		out.Hotels[i] = h
		out.Hotels[i].MapURL = cloneURL(h.MapURL)
		if h.MapURL == nil {
			if uri := FindSourceURI(h.Name, chunks); uri != "" {
				out.Hotels[i].MapURL = &uri
				filled++
			}
		}
	}

	out.Days = make([]types.DailyPlan, len(it.Days))
	for d, day := range it.Days {
		out.Days[d] = day
		out.Days[d].Items = make([]types.ItineraryItem, len(day.Items))
		for i, item := range day.Items {
			out.Days[d].Items[i] = a.annotateItem(item, chunks, &filled)
		}
	}

	span.SetAttributes(attribute.Int("resolve.links_filled", filled))
	a.logger.DebugContext(ctx, "itinerary annotated",
		slog.Int("links_filled", filled),
		slog.Int("citations", len(chunks)),
	)
	return out
}

// cloneURL copies a link pointer so the annotated document shares no
// mutable state with its source.
func cloneURL(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (a *Annotator) annotateItem(item types.ItineraryItem, chunks []types.GroundingChunk, filled *int) types.ItineraryItem {
	out := item
	out.MapURL = cloneURL(item.MapURL)
	out.NeighborhoodURL = cloneURL(item.NeighborhoodURL)
	if out.MapURL == nil {
		if uri := FindSourceURI(out.ActivityName, chunks); uri != "" {
			out.MapURL = &uri
			*filled++
		}
	}
	if out.NeighborhoodURL == nil && out.Location != "" {
		uri := FindNeighborhoodURI(out.Location, chunks)
		out.NeighborhoodURL = &uri
		*filled++
	}
	if item.HiddenGem != nil {
		gem := *item.HiddenGem
		gem.MapURL = cloneURL(item.HiddenGem.MapURL)
		gem.NeighborhoodURL = cloneURL(item.HiddenGem.NeighborhoodURL)
		if gem.MapURL == nil {
			if uri := FindSourceURI(gem.Name, chunks); uri != "" {
				gem.MapURL = &uri
				*filled++
			}
		}
		if gem.NeighborhoodURL == nil && gem.Location != "" {
			uri := FindNeighborhoodURI(gem.Location, chunks)
			gem.NeighborhoodURL = &uri
			*filled++
		}
		out.HiddenGem = &gem
	}
	return out
}
