package types

// CitationKind distinguishes the two grounding sources the generator
// returns: plain web search results and Google Maps places.
type CitationKind string

const (
	CitationWeb  CitationKind = "web"
	CitationMaps CitationKind = "maps"
)

// GroundingChunk is a single citation returned alongside a generation,
// asserting a real-world source backs part of the itinerary. Chunks are
// not owned by any itinerary item until the matcher assigns them.
type GroundingChunk struct {
	Kind           CitationKind    `json:"kind"`
	URI            string          `json:"uri"`
	Title          string          `json:"title"`
	ReviewSnippets []ReviewSnippet `json:"review_snippets,omitempty"` // maps citations only
}

// ReviewSnippet is a nested review citation on a maps chunk.
type ReviewSnippet struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Coordinate is a validated latitude/longitude pair. Derived data only,
// recomputed on demand from a map link, never persisted as primary state.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both values are within standard ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// ExtractionResult is the transient outcome of parsing a map link. Either
// Coord is set (the link carried coordinates) or the remaining fields
// describe how to geocode. It lives only within a single resolution call.
type ExtractionResult struct {
	Coord   *Coordinate `json:"coord,omitempty"`
	Query   string      `json:"query,omitempty"`    // free-text geocoding query
	PlaceID string      `json:"place_id,omitempty"` // geocode by place identifier
	CID     string      `json:"cid,omitempty"`      // opaque; resolvable only by place name
}

// NeedsGeocoding reports whether the link could not be resolved to
// coordinates directly.
func (r ExtractionResult) NeedsGeocoding() bool {
	return r.Coord == nil
}
