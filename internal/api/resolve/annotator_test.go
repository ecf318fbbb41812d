package resolve

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }

func sampleItinerary() types.Itinerary {
	return types.Itinerary{
		TripTitle:   "Tokyo Long Weekend",
		VibeCheck:   "Neon nights, quiet shrines.",
		PackingList: []string{"comfortable shoes", "portable charger"},
		Hotels: []types.Hotel{
			{Name: "Park Hyatt Tokyo", Description: "Skyline views.", Location: "Shinjuku"},
		},
		Days: []types.DailyPlan{
			{
				Day:   "Day 1",
				Title: "Arrival and Shinjuku",
				Items: []types.ItineraryItem{
					{
						Time:         "10:00",
						ActivityName: "Meiji Shrine",
						Location:     "Harajuku",
						Description:  "Forest shrine in the city.",
						HiddenGem: &types.HiddenGem{
							Name:        "Togo Shrine",
							Location:    "Harajuku",
							Description: "Quieter neighbor.",
						},
					},
					{
						Time:         "13:00",
						ActivityName: "a cozy noodle shop",
						Location:     "Shibuya",
						Description:  "Wherever the line is shortest.",
					},
				},
			},
		},
	}
}

func sampleChunks() []types.GroundingChunk {
	return []types.GroundingChunk{
		{Kind: types.CitationMaps, Title: "Park Hyatt Tokyo", URI: "https://maps.google.com/?cid=123"},
		{Kind: types.CitationMaps, Title: "Meiji Shrine", URI: "https://maps.google.com/?cid=456"},
		{Kind: types.CitationWeb, Title: "Togo Shrine", URI: "https://maps.google.com/?cid=789"},
		{Kind: types.CitationMaps, Title: "Harajuku", URI: "https://maps.google.com/?cid=1011"},
	}
}

func TestAnnotate_FillsMissingLinks(t *testing.T) {
	a := NewAnnotator(testLogger())
	out := a.Annotate(context.Background(), sampleItinerary(), sampleChunks())

	require.Len(t, out.Hotels, 1)
	require.NotNil(t, out.Hotels[0].MapURL)
	assert.Equal(t, "https://maps.google.com/?cid=123", *out.Hotels[0].MapURL)

	day := out.Days[0]
	require.Len(t, day.Items, 2)

	meiji := day.Items[0]
	require.NotNil(t, meiji.MapURL)
	assert.Equal(t, "https://maps.google.com/?cid=456", *meiji.MapURL)
	require.NotNil(t, meiji.NeighborhoodURL)
	assert.Equal(t, "https://maps.google.com/?cid=1011", *meiji.NeighborhoodURL)

	require.NotNil(t, meiji.HiddenGem)
	require.NotNil(t, meiji.HiddenGem.MapURL)
	assert.Equal(t, "https://maps.google.com/?cid=789", *meiji.HiddenGem.MapURL)

	// Generic activity names stay unlinked even with citations present,
	// but the neighborhood link is always populated.
	noodles := day.Items[1]
	assert.Nil(t, noodles.MapURL)
	require.NotNil(t, noodles.NeighborhoodURL)
	assert.Contains(t, *noodles.NeighborhoodURL, "Shibuya")
}

func TestAnnotate_PreservesStructure(t *testing.T) {
	a := NewAnnotator(testLogger())
	in := sampleItinerary()
	out := a.Annotate(context.Background(), in, sampleChunks())

	assert.Equal(t, in.TripTitle, out.TripTitle)
	assert.Equal(t, in.VibeCheck, out.VibeCheck)
	assert.Equal(t, in.PackingList, out.PackingList)
	assert.Len(t, out.Hotels, len(in.Hotels))
	require.Len(t, out.Days, len(in.Days))
	for d := range in.Days {
		assert.Equal(t, in.Days[d].Day, out.Days[d].Day)
		assert.Len(t, out.Days[d].Items, len(in.Days[d].Items))
		for i := range in.Days[d].Items {
			assert.Equal(t, in.Days[d].Items[i].ActivityName, out.Days[d].Items[i].ActivityName)
		}
	}
}

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	a := NewAnnotator(testLogger())
	in := sampleItinerary()
	out := a.Annotate(context.Background(), in, sampleChunks())

	assert.Nil(t, in.Hotels[0].MapURL)
	assert.Nil(t, in.Days[0].Items[0].MapURL)
	assert.Nil(t, in.Days[0].Items[0].NeighborhoodURL)
	assert.Nil(t, in.Days[0].Items[0].HiddenGem.MapURL)

	// Mutating the output must not leak back into the input.
	*out.Hotels[0].MapURL = "https://tampered.example"
	out.PackingList[0] = "tampered"
	out.Days[0].Items[0].Description = "tampered"
	assert.Nil(t, in.Hotels[0].MapURL)
	assert.Equal(t, "comfortable shoes", in.PackingList[0])
	assert.Equal(t, "Forest shrine in the city.", in.Days[0].Items[0].Description)
}

func TestAnnotate_IdempotentOnFullyPopulated(t *testing.T) {
	a := NewAnnotator(testLogger())
	in := sampleItinerary()
	in.Hotels[0].MapURL = strptr("https://maps.google.com/?cid=existing-hotel")
	for i := range in.Days[0].Items {
		in.Days[0].Items[i].MapURL = strptr("https://maps.google.com/?cid=existing-item")
		in.Days[0].Items[i].NeighborhoodURL = strptr("https://maps.google.com/?cid=existing-hood")
	}
	in.Days[0].Items[0].HiddenGem.MapURL = strptr("https://maps.google.com/?cid=existing-gem")
	in.Days[0].Items[0].HiddenGem.NeighborhoodURL = strptr("https://maps.google.com/?cid=existing-gem-hood")

	out := a.Annotate(context.Background(), in, sampleChunks())
	assert.Equal(t, in, out)
}

func TestAnnotate_ExistingLinksNeverOverwritten(t *testing.T) {
	a := NewAnnotator(testLogger())
	in := sampleItinerary()
	in.Hotels[0].MapURL = strptr("https://original.example")

	out := a.Annotate(context.Background(), in, sampleChunks())
	assert.Equal(t, "https://original.example", *out.Hotels[0].MapURL)
}

func TestAnnotate_EmptyCitations(t *testing.T) {
	a := NewAnnotator(testLogger())
	out := a.Annotate(context.Background(), sampleItinerary(), nil)

	assert.Nil(t, out.Hotels[0].MapURL)
	assert.Nil(t, out.Days[0].Items[0].MapURL)
	// Neighborhood links are fabricated maps searches when nothing cites
	// the area.
	require.NotNil(t, out.Days[0].Items[0].NeighborhoodURL)
	assert.Contains(t, *out.Days[0].Items[0].NeighborhoodURL, mapsSearchBase)
}
