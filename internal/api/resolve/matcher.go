package resolve

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Fixed matching thresholds. These mirror long-standing product behavior;
// do not tune without guidance.
const (
	containmentRatioMin = 0.6
	wordOverlapMin      = 0.5
	genericMaxWords     = 4
)

const mapsSearchBase = "https://www.google.com/maps/search/?api=1&query="

// genericMarkers flag phrases that describe an activity rather than name a
// place ("lunch near the station", "explore the old town"). A name is only
// considered generic when it carries a marker AND is short; long names with
// a marker word in them are usually real businesses.
var genericMarkers = []string{
	"lunch", "dinner", "breakfast", "brunch", "coffee", "snack", "meal",
	"station", "airport", "transfer", "transit", "train", "bus",
	"explore", "stroll", "walk", "wander", "shopping", "relax",
	"old town", "downtown", "city center", "neighborhood", "district", "area",
	"free time", "check in", "check out", "hotel time", "shop",
}

// businessMarkers indicate a citation titled after a specific business, not
// an area, so it cannot stand in for a neighborhood link.
var businessMarkers = []string{
	"restaurant", "hotel", "cafe", "bar", "store", "shop", "museum",
	"gallery", "bakery", "izakaya", "bistro", "tavern",
}

// normalizeName lowercases, strips punctuation and symbols, and collapses
// runs of whitespace so "Tsukiji Outer-Market!" and "tsukiji outer market"
// compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isGenericPlaceName reports whether a normalized name is a generic phrase
// that should never be matched against citations.
func isGenericPlaceName(normalized string) bool {
	if normalized == "" {
		return true
	}
	if len(strings.Fields(normalized)) > genericMaxWords {
		return false
	}
	for _, marker := range genericMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// FindSourceURI returns the URI of the grounding citation that best matches
// a place name, or "" when no sufficiently confident match exists. The
// citation list's order is the tie-break: the first acceptable citation
// wins in both passes.
func FindSourceURI(name string, chunks []types.GroundingChunk) string {
	query := normalizeName(name)
	if isGenericPlaceName(query) {
		return ""
	}

	// Pass 1: exact match, or containment where the shorter string is a
	// substantial share of the longer one.
	for _, chunk := range chunks {
		title := normalizeName(chunk.Title)
		if title == "" {
			continue
		}
		if title == query {
			return chunk.URI
		}
		if strings.Contains(title, query) || strings.Contains(query, title) {
			shorter, longer := utf8.RuneCountInString(query), utf8.RuneCountInString(title)
			if shorter > longer {
				shorter, longer = longer, shorter
			}
			if float64(shorter)/float64(longer) >= containmentRatioMin {
				return chunk.URI
			}
		}
	}

	// Pass 2: fraction of significant query words appearing in the title.
	// Strictly-greater comparison keeps the first-seen citation on ties.
	words := significantWords(query)
	if len(words) == 0 {
		return ""
	}
	bestURI := ""
	bestScore := 0.0
	for _, chunk := range chunks {
		title := normalizeName(chunk.Title)
		if title == "" {
			continue
		}
		hits := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				hits++
			}
		}
		score := float64(hits) / float64(len(words))
		if score >= wordOverlapMin && score > bestScore {
			bestScore = score
			bestURI = chunk.URI
		}
	}
	return bestURI
}

// significantWords drops words of one or two characters before overlap
// scoring; articles and particles would otherwise inflate matches.
func significantWords(normalized string) []string {
	fields := strings.Fields(normalized)
	words := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			words = append(words, f)
		}
	}
	return words
}

// FindNeighborhoodURI resolves a neighborhood/area label to a citation URI,
// or fabricates a maps search link when no citation qualifies. It never
// returns "": any text is searchable. Citations titled after a specific
// business are rejected even when they mention the area.
func FindNeighborhoodURI(area string, chunks []types.GroundingChunk) string {
	query := normalizeName(area)
	if query != "" {
		for _, chunk := range chunks {
			title := normalizeName(chunk.Title)
			if title == "" {
				continue
			}
			if title != query && !strings.Contains(title, query) && !strings.Contains(query, title) {
				continue
			}
			if containsBusinessMarker(title) {
				continue
			}
			return chunk.URI
		}
	}
	return mapsSearchBase + url.QueryEscape(area)
}

func containsBusinessMarker(normalizedTitle string) bool {
	for _, marker := range businessMarkers {
		if strings.Contains(normalizedTitle, marker) {
			return true
		}
	}
	return false
}
