package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func chunk(title, uri string) types.GroundingChunk {
	return types.GroundingChunk{Kind: types.CitationMaps, Title: title, URI: uri}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "tsukiji outer market", normalizeName("  Tsukiji Outer-Market! "))
	// Accented characters are letters, not symbols; they survive.
	assert.Equal(t, "café du monde", normalizeName("Café du Monde"))
	assert.Equal(t, "", normalizeName("!!! ---"))
}

func TestFindSourceURI_ExactMatch(t *testing.T) {
	chunks := []types.GroundingChunk{
		chunk("Senso-ji Temple", "https://maps.google.com/?cid=1"),
		chunk("Park Hyatt Tokyo", "https://maps.google.com/?cid=2"),
	}
	assert.Equal(t, "https://maps.google.com/?cid=2", FindSourceURI("Park Hyatt Tokyo", chunks))
}

func TestFindSourceURI_ContainmentThreshold(t *testing.T) {
	chunks := []types.GroundingChunk{chunk("Ichiran Ramen Shibuya", "https://maps.google.com/?cid=9")}

	// "ramen" (5 chars) vs "ichiran ramen shibuya" (21 chars): ratio well
	// below 0.6, containment must not fire. The fallback pass still
	// accepts it because its single significant word appears in the title.
	assert.Equal(t, "https://maps.google.com/?cid=9", FindSourceURI("Ramen", chunks))

	// Against an unrelated title neither pass fires.
	assert.Empty(t, FindSourceURI("Ramen", []types.GroundingChunk{chunk("Tokyo National Museum", "u")}))
}

func TestFindSourceURI_ContainmentAcceptsSubstantialOverlap(t *testing.T) {
	chunks := []types.GroundingChunk{chunk("Park Hyatt Tokyo Hotel", "https://maps.google.com/?cid=7")}
	// "park hyatt tokyo" (16) vs "park hyatt tokyo hotel" (22): 0.72 >= 0.6.
	assert.Equal(t, "https://maps.google.com/?cid=7", FindSourceURI("Park Hyatt Tokyo", chunks))
}

func TestFindSourceURI_GenericPhraseRejected(t *testing.T) {
	chunks := []types.GroundingChunk{
		chunk("Shibuya Station", "https://maps.google.com/?cid=3"),
	}
	// Four words and a generic marker: rejected even though a citation
	// title contains "station".
	assert.Empty(t, FindSourceURI("lunch near the station", chunks))
	assert.Empty(t, FindSourceURI("a cozy noodle shop", chunks))
	assert.Empty(t, FindSourceURI("explore the old town", chunks))

	// Short names built around a transit marker fall under the same rule.
	assert.Empty(t, FindSourceURI("Shibuya Station", chunks))

	// A marker word inside a longer, specific name is not generic.
	long := []types.GroundingChunk{chunk("Kyoto Station Building Sky Garden", "https://maps.google.com/?cid=4")}
	assert.Equal(t, "https://maps.google.com/?cid=4", FindSourceURI("Kyoto Station Building Sky Garden", long))
}

func TestFindSourceURI_OrderStableTieBreak(t *testing.T) {
	chunks := []types.GroundingChunk{
		chunk("Golden Gai Alley Guide", "https://first.example"),
		chunk("Golden Gai Alley Tips", "https://second.example"),
	}
	// The scrambled word order defeats the containment pass; both titles
	// then score identically on word overlap, so the earlier citation wins.
	assert.Equal(t, "https://first.example", FindSourceURI("Gai Golden Alley", chunks))
}

func TestFindSourceURI_WordOverlapMinimum(t *testing.T) {
	chunks := []types.GroundingChunk{chunk("Meiji Shrine", "u1")}
	// One of four significant words present: 0.25 < 0.5, no match.
	assert.Empty(t, FindSourceURI("Meiji Museum Collection Annex", chunks))
}

func TestFindSourceURI_NoCitations(t *testing.T) {
	assert.Empty(t, FindSourceURI("Park Hyatt Tokyo", nil))
}

func TestFindNeighborhoodURI_CitationMatch(t *testing.T) {
	chunks := []types.GroundingChunk{
		chunk("Shimokitazawa", "https://maps.google.com/?cid=11"),
	}
	assert.Equal(t, "https://maps.google.com/?cid=11", FindNeighborhoodURI("Shimokitazawa", chunks))
}

func TestFindNeighborhoodURI_RejectsBusinessCitations(t *testing.T) {
	chunks := []types.GroundingChunk{
		chunk("Shibuya Ramen Restaurant", "https://maps.google.com/?cid=12"),
		chunk("Hotel Century Shibuya", "https://maps.google.com/?cid=13"),
	}
	got := FindNeighborhoodURI("Shibuya", chunks)
	assert.Contains(t, got, mapsSearchBase)
	assert.Contains(t, got, "Shibuya")
}

func TestFindNeighborhoodURI_AlwaysReturnsUsableURL(t *testing.T) {
	got := FindNeighborhoodURI("Shibuya", nil)
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "Shibuya")

	encoded := FindNeighborhoodURI("Le Marais, Paris", nil)
	assert.Equal(t, mapsSearchBase+"Le+Marais%2C+Paris", encoded)
}
