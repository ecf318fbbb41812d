package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// buildItineraryPrompt folds the whole group's preferences into a single
// generation prompt. The JSON contract here must stay in sync with the
// types.Itinerary field tags the parser unmarshals into.
func buildItineraryPrompt(plan *types.Plan, prefs []types.TravelerPreferences) string {
	var travelers strings.Builder
	for _, p := range prefs {
		name := p.DisplayName
		if name == "" {
			name = "A traveler"
		}
		travelers.WriteString(fmt.Sprintf("- %s: budget %s, style %s", name, orUnspecified(p.Budget), orUnspecified(p.TravelStyle)))
		if len(p.MustDos) > 0 {
			travelers.WriteString(", must-dos: " + strings.Join(p.MustDos, "; "))
		}
		if p.DietaryNotes != "" {
			travelers.WriteString(", dietary: " + p.DietaryNotes)
		}
		travelers.WriteString("\n")
	}

	days := int(plan.EndDate.Sub(plan.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	return fmt.Sprintf(`You are a group travel planner. Plan a %d-day trip to %s for the group below.
Use Google Search to ground every recommendation in real, currently-operating places.

Travelers:
%s
Requirements:
- Activity names must be exact proper place names (e.g. "Senso-ji Temple"), never generic phrases.
- Every activity gets a neighborhood/area label in "location".
- Balance the group's budgets and styles; honor every must-do at least once.
- Include one optional "hidden_gem" per day at most.

Respond with ONLY a valid JSON object, no markdown fences, in exactly this shape:
{
  "trip_title": "string",
  "vibe_check": "one-paragraph summary of the trip's mood",
  "packing_list": ["string"],
  "hotels": [
    {"name": "string", "description": "string", "location": "string"}
  ],
  "days": [
    {
      "day": "Day 1",
      "title": "string",
      "items": [
        {
          "time": "09:00",
          "activity_name": "string",
          "location": "string",
          "description": "string",
          "hidden_gem": {"name": "string", "location": "string", "description": "string"}
        }
      ]
    }
  ]
}`, days, plan.Destination, travelers.String())
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
