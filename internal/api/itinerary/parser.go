package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// cleanJSONResponse strips markdown fences and any explanatory prose the
// model wraps around the JSON object.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// parseItinerary decodes the generator's response into the itinerary
// aggregate. A document with no days is treated as a failed generation.
func parseItinerary(raw string) (types.Itinerary, error) {
	var it types.Itinerary
	cleaned := cleanJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), &it); err != nil {
		return types.Itinerary{}, fmt.Errorf("failed to parse itinerary JSON: %w", err)
	}
	if len(it.Days) == 0 {
		return types.Itinerary{}, fmt.Errorf("generated itinerary has no days")
	}
	return it, nil
}
